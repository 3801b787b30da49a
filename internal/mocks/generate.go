package mocks

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/user --output domain/user --outpkg usermock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/team --output domain/team --outpkg teammock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/follow --output domain/follow --outpkg followmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/registration --output domain/registration --outpkg registrationmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name Repository --dir ../domain/subscription --output domain/subscription --outpkg subscriptionmock --filename repository_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name SubscriptionFetcher --dir ../usecase --output usecase --outpkg usecasemock --filename subscription_fetcher_mock.go
//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name TokenVerifier --dir ../interfaces/httpapi --output interfaces/httpapi --outpkg httpapimock --filename token_verifier_mock.go
