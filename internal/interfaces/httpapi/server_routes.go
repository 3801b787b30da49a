package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/registrations", handler.StartRegistration)
	mux.HandleFunc("GET /v1/players", handler.SearchPlayers)
	mux.HandleFunc("GET /v1/players/uncommitted", handler.ListUncommittedPlayers)
	mux.HandleFunc("GET /v1/players/{playerID}", handler.GetPlayer)
	mux.HandleFunc("GET /v1/players/{playerID}/stats", handler.GetPlayerStats)
	mux.HandleFunc("GET /v1/teams", handler.ListTeams)
	mux.HandleFunc("GET /v1/teams/{teamID}/roster", handler.GetTeamRoster)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/dashboard/coach", RequireAuth(verifier, http.HandlerFunc(handler.GetCoachDashboard)))
	mux.Handle("GET /v1/dashboard/scout", RequireAuth(verifier, http.HandlerFunc(handler.GetScoutDashboard)))
	mux.Handle("POST /v1/follows", RequireAuth(verifier, http.HandlerFunc(handler.CreateFollow)))
	mux.Handle("DELETE /v1/follows/{playerID}", RequireAuth(verifier, http.HandlerFunc(handler.DeleteFollow)))
}

func registerWebhookRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/webhooks/stripe", handler.StripeWebhook)
	mux.HandleFunc("POST /v1/webhooks/outseta", handler.OutsetaWebhook)
}

func registerInternalRoutes(mux *http.ServeMux, handler *Handler, internalToken string) {
	mux.Handle("POST /v1/imports/players", RequireInternalToken(internalToken, http.HandlerFunc(handler.ImportPlayers)))
}
