package main

import (
	"net/http"

	"github.com/bmizerany/pat"
	"github.com/justinas/alice"

	"mindaudit/internal/models"
)

func (app *application) JWTMiddlewareWithRole(requiredRole string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return app.JWTMiddleware(next, requiredRole)
	}
}

func (app *application) routes() http.Handler {
	standardMiddleware := alice.New(app.recoverPanic, app.logRequest, secureHeaders)
	authMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(""))
	collaboratorMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleCollaborator))
	adminMiddleware := standardMiddleware.Append(app.JWTMiddlewareWithRole(models.RoleAdmin))

	mux := pat.New()

	// Auth
	mux.Post("/user/sign_up", standardMiddleware.ThenFunc(app.userHandler.SignUp))
	mux.Post("/user/sign_in", standardMiddleware.ThenFunc(app.userHandler.SignIn))
	mux.Post("/user/refresh", standardMiddleware.ThenFunc(app.userHandler.Refresh))
	mux.Post("/user/logout", authMiddleware.ThenFunc(app.userHandler.Logout))
	mux.Get("/user/me", authMiddleware.ThenFunc(app.userHandler.Me))

	// Collaborators
	mux.Get("/collaborators", adminMiddleware.ThenFunc(app.collaboratorHandler.List))
	mux.Post("/collaborators/:id/approve", adminMiddleware.ThenFunc(app.collaboratorHandler.Approve))
	mux.Post("/collaborators/:id/deactivate", adminMiddleware.ThenFunc(app.collaboratorHandler.Deactivate))
	mux.Get("/collaborators/me", collaboratorMiddleware.ThenFunc(app.collaboratorHandler.MyProfile))
	mux.Get("/collaborators/:id", adminMiddleware.ThenFunc(app.collaboratorHandler.Profile))

	// Hour packages
	mux.Get("/packages", authMiddleware.ThenFunc(app.packageHandler.List))
	mux.Post("/packages", adminMiddleware.ThenFunc(app.packageHandler.Create))
	mux.Get("/packages/:id", authMiddleware.ThenFunc(app.packageHandler.Get))
	mux.Put("/packages/:id", adminMiddleware.ThenFunc(app.packageHandler.Update))

	// Hour purchases
	mux.Post("/purchases/checkout", collaboratorMiddleware.ThenFunc(app.purchaseHandler.CreateCheckout))
	mux.Get("/purchases", collaboratorMiddleware.ThenFunc(app.purchaseHandler.History))
	mux.Get("/purchases/collaborator/:collaborator_id", adminMiddleware.ThenFunc(app.purchaseHandler.History))

	// Consultations
	mux.Post("/consultations", collaboratorMiddleware.ThenFunc(app.consultationHandler.Create))
	mux.Get("/consultations", authMiddleware.ThenFunc(app.consultationHandler.List))
	mux.Get("/consultations/:id", authMiddleware.ThenFunc(app.consultationHandler.Detail))
	mux.Post("/consultations/:id/quote", adminMiddleware.ThenFunc(app.consultationHandler.Quote))
	mux.Post("/consultations/:id/accept", collaboratorMiddleware.ThenFunc(app.consultationHandler.Accept))
	mux.Post("/consultations/:id/reject", collaboratorMiddleware.ThenFunc(app.consultationHandler.Reject))
	mux.Post("/consultations/:id/complete", adminMiddleware.ThenFunc(app.consultationHandler.Complete))
	mux.Post("/consultations/:id/reopen", authMiddleware.ThenFunc(app.consultationHandler.Reopen))
	mux.Post("/consultations/:id/meeting", authMiddleware.ThenFunc(app.consultationHandler.ScheduleMeeting))
	mux.Post("/consultations/:id/messages", authMiddleware.ThenFunc(app.consultationHandler.SendMessage))
	mux.Get("/consultations/:id/messages", authMiddleware.ThenFunc(app.consultationHandler.Messages))
	mux.Post("/consultations/files", authMiddleware.ThenFunc(app.consultationHandler.UploadFile))

	// Thread push
	mux.Get("/ws", authMiddleware.ThenFunc(app.WebSocketHandler))

	// Budgets and commissions
	mux.Post("/budgets", adminMiddleware.ThenFunc(app.budgetHandler.Create))
	mux.Get("/budgets/company/:company_id", adminMiddleware.ThenFunc(app.budgetHandler.ListByCompany))
	mux.Get("/budgets/:id", adminMiddleware.ThenFunc(app.budgetHandler.Get))
	mux.Post("/budgets/:id/accept", adminMiddleware.ThenFunc(app.commissionHandler.AcceptBudget))
	mux.Put("/budgets/:id/status", adminMiddleware.ThenFunc(app.budgetHandler.UpdateStatus))

	mux.Get("/commissions", authMiddleware.ThenFunc(app.commissionHandler.List))
	mux.Post("/commissions/:id/pay", adminMiddleware.ThenFunc(app.commissionHandler.Pay))
	mux.Get("/commissions/totals", collaboratorMiddleware.ThenFunc(app.commissionHandler.Totals))
	mux.Get("/commissions/totals/:collaborator_id", adminMiddleware.ThenFunc(app.commissionHandler.Totals))

	// Provider webhooks, authenticated by signature instead of JWT
	mux.Post("/webhooks/stripe", standardMiddleware.ThenFunc(app.stripeWebhook.Receive))
	mux.Post("/webhooks/pandadoc", standardMiddleware.ThenFunc(app.pandadocWebhook.Receive))

	// Push tokens
	mux.Post("/notify_tokens", authMiddleware.ThenFunc(app.fcmHandler.CreateToken))
	mux.Del("/notify_tokens/:token", authMiddleware.ThenFunc(app.fcmHandler.DeleteToken))

	// Audit trail
	mux.Get("/audit_logs", adminMiddleware.ThenFunc(app.auditHandler.List))

	return standardMiddleware.Then(mux)
}
