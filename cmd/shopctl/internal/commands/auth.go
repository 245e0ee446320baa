package commands

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

type LoginCmd struct {
	Email    string `help:"Account email address." required:""`
	Password string `help:"Account password. Read from stdin when omitted."`
}

func (l *LoginCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	password := l.Password
	if password == "" {
		fmt.Fprint(os.Stderr, "Password: ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimSpace(line)
	}

	res := app.session.Login(ctx, app.api, l.Email, password)
	if !res.Success {
		return fmt.Errorf("%s", res.Message)
	}

	user, _ := app.session.User()
	fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
	return nil
}

type LogoutCmd struct{}

func (l *LogoutCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	// The logout hook would print a session-ended notice here, which reads
	// wrong for a deliberate logout.
	app.session.OnLogout(nil)
	app.session.Logout()
	fmt.Println("Logged out.")
	return nil
}

type WhoamiCmd struct{}

func (w *WhoamiCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	user, ok := app.session.User()
	if !ok {
		return fmt.Errorf("not logged in")
	}
	fmt.Printf("%s <%s>\n", user.Name, user.Email)
	if user.IsAdmin {
		fmt.Println("role: admin")
	}
	return nil
}
