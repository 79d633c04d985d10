package web

import (
	"net/http"

	"sanctuary/internal/adapters/http/middleware"
	"sanctuary/internal/domain/account"
)

func registerRoutes(mux *http.ServeMux) {
	member := middleware.RequireAuth
	staff := middleware.RequireRole(account.StaffRoles...)
	admin := middleware.RequireRole(account.RoleAdmin)
	codeLimited := middleware.RateLimit(cfg.CodeLimiter, "code")
	loginLimited := middleware.RateLimit(cfg.CodeLimiter, "login")

	handle := func(pattern string, h http.HandlerFunc, wrap ...func(http.Handler) http.Handler) {
		var handler http.Handler = h
		for i := len(wrap) - 1; i >= 0; i-- {
			handler = wrap[i](handler)
		}
		mux.Handle(pattern, handler)
	}

	handle("GET /healthz", handleHealth)

	// Identity
	handle("POST /login", handleLogin, loginLimited)
	handle("POST /logout", handleLogout)
	handle("GET /api/me", handleMe, member)
	handle("PUT /api/me/profile", handleUpdateProfile, member)
	handle("POST /api/me/password", handleChangePassword, member)
	handle("POST /api/accounts", handleCreateAccount, admin)

	// Events and check-in
	handle("GET /api/events", handleListEvents, staff)
	handle("POST /api/events", handleCreateEvent, staff)
	handle("POST /api/events/{id}/session/start", handleStartEventSession, staff)
	handle("POST /api/events/{id}/session/stop", handleStopEventSession, staff)
	handle("GET /api/event-session/active", handleActiveEventSession)
	handle("GET /api/event-session/{id}/roster", handleEventRoster, staff)
	handle("GET /api/event-session/{id}/roster.xlsx", handleEventRosterXLSX, staff)
	handle("POST /api/checkin/member", handleCheckInMember, member, codeLimited)
	handle("POST /api/checkin/guest", handleCheckInGuest, codeLimited)

	// Programs
	handle("GET /api/programs/active", handleActivePrograms)
	handle("GET /api/programs/mine", handleMyProgramCheckIns, member)
	handle("POST /api/programs/teen/checkin/self", handleTeenCheckIn, member)
	handle("POST /api/programs/{program}/open", handleOpenProgram, staff)
	handle("POST /api/programs/{program}/close", handleCloseProgram, staff)
	handle("POST /api/programs/{program}/checkin", handleCheckInChildren, member)
	handle("GET /api/programs/{program}/roster", handleProgramRoster, staff)
	handle("GET /api/programs/{program}/roster.xlsx", handleProgramRosterXLSX, staff)

	// Children
	handle("GET /api/children", handleListChildren, member)
	handle("POST /api/children", handleRegisterChild, member)
	handle("GET /api/children/{id}", handleGetChild, member)

	handle("POST /api/pickup/redeem", handleRedeemPickup, staff, codeLimited)
	handle("GET /api/audit", handleListAudit, staff)
}
