package suites

import (
	"context"
	"fmt"

	"github.com/tendant/cms-check/pkg/check"
)

// Auth walks the session lifecycle with the given credentials.
func Auth(username, password string) check.Suite {
	return check.Suite{
		Name: "auth",
		Checks: []check.Check{
			{
				Name: "login",
				Run: func(ctx context.Context, t *check.T) error {
					return t.Client.Login(ctx, username, password)
				},
			},
			{
				Name: "whoami matches login",
				Run: func(ctx context.Context, t *check.T) error {
					who, err := t.Client.WhoAmI(ctx)
					if err != nil {
						return err
					}
					if who.Username != username {
						return fmt.Errorf("session belongs to %q, logged in as %q", who.Username, username)
					}
					return nil
				},
			},
			{
				Name: "logout",
				Run: func(ctx context.Context, t *check.T) error {
					return t.Client.Logout(ctx)
				},
			},
			{
				Name: "login restores session",
				Run: func(ctx context.Context, t *check.T) error {
					// Later suites and their teardown share this client;
					// in credential mode the walk must not leave it
					// logged out.
					if err := t.Client.Login(ctx, username, password); err != nil {
						return err
					}
					who, err := t.Client.WhoAmI(ctx)
					if err != nil {
						return err
					}
					if who.Username != username {
						return fmt.Errorf("restored session belongs to %q, logged in as %q", who.Username, username)
					}
					return nil
				},
			},
		},
	}
}
