package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) getStatus(ctx context.Context) string {
	s := ""
	if session, err := a.authService.CurrentUser(ctx); err == nil && session != nil {
		s = session.User.Email + " "
	}
	s += string(a.mode())
	return fmt.Sprintf("(%s)", s)
}

// WhoAmI prints the current session.
func (a *App) WhoAmI(ctx context.Context) error {
	session, err := a.authService.CurrentUser(ctx)
	if err != nil {
		a.printFailure(err)
		return err
	}
	if session == nil {
		fmt.Fprintln(a.out, "Not logged in")
		return nil
	}

	fmt.Fprintf(a.out, "%s (id %s), logged in since %s\n",
		session.User.Email, session.User.ID, session.StartedAt.Local().Format(time.DateTime))
	if session.TokenExpiresAt != nil {
		fmt.Fprintf(a.out, "token expires at %s\n", session.TokenExpiresAt.Local().Format(time.DateTime))
	}
	return nil
}

// Status prints the connection snapshot.
func (a *App) Status(ctx context.Context) error {
	st := a.authService.ConnectionStatus(ctx)

	lastSync := "never"
	if st.LastSuccessfulSync != nil {
		lastSync = st.LastSuccessfulSync.Local().Format(time.DateTime)
	}
	fmt.Fprintf(a.out, "network: %s\nserver: %s\npending operations: %d\nlast sync: %s\n",
		yesNo(st.NetworkReachable, "online", "offline"),
		yesNo(st.RemoteServiceReachable, "available", "unavailable"),
		st.PendingOperations, lastSync)
	return nil
}

// Probe checks the server now and updates the mode.
func (a *App) Probe(ctx context.Context) error {
	a.refreshMode(ctx)
	fmt.Fprintln(a.out, "Server is", yesNo(a.mode() == ModeOnline, "available", "unavailable"))
	return nil
}

// Sync replays pending operations.
func (a *App) Sync(ctx context.Context) error {
	n, err := a.authService.SyncPendingData(ctx)
	if err != nil {
		a.printFailure(err)
		return err
	}
	fmt.Fprintf(a.out, "Synced %d operation(s), %d pending\n", n, a.authService.ConnectionStatus(ctx).PendingOperations)
	return nil
}

// Reset wipes every locally stored account, the session and the queue.
func (a *App) Reset(ctx context.Context) error {
	answer, err := getSimpleText(a.reader, "This removes all local accounts and unsynced registrations. Type 'yes' to continue", a.out)
	if err != nil {
		return err
	}
	if answer != "yes" {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.authService.ClearLocalData(ctx); err != nil {
		a.printFailure(err)
		return err
	}
	fmt.Fprintln(a.out, "Local data cleared")
	return nil
}

func yesNo(v bool, yes, no string) string {
	if v {
		return yes
	}
	return no
}
