package cli

import "github.com/alexanderramin/studylog/internal/app"

func (a *App) submitSessionUseCase() app.SubmitSessionUseCase {
	if a.SubmitSession != nil {
		return a.SubmitSession
	}
	return a.Sessions
}

func (a *App) listSessionsUseCase() app.ListSessionsUseCase {
	if a.ListSessions != nil {
		return a.ListSessions
	}
	return a.Sessions
}

func (a *App) generateReportUseCase() app.GenerateReportUseCase {
	if a.GenerateReport != nil {
		return a.GenerateReport
	}
	return a.Reports
}

func (a *App) signInUseCase() app.SignInUseCase {
	if a.SignIn != nil {
		return a.SignIn
	}
	return a.Auth
}
