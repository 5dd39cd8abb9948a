package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"google.golang.org/grpc/status"

	"github.com/dmitrijs2005/wildcard-newsfeed/internal/client/client"
	"github.com/dmitrijs2005/wildcard-newsfeed/internal/filex"
	gs "github.com/dmitrijs2005/wildcard-newsfeed/internal/server/grpc"
)

func (a *App) printError(err error) {
	msg := err.Error()
	if st, ok := status.FromError(err); ok {
		msg = st.Message()
	}
	fmt.Fprintf(a.out, "Error [%s]: %s\n", client.ErrorReason(err), msg)

	fields := client.FieldErrors(err)
	names := make([]string, 0, len(fields))
	for f := range fields {
		names = append(names, f)
	}
	sort.Strings(names)
	for _, f := range names {
		fmt.Fprintf(a.out, "  %s: %s\n", f, fields[f])
	}
}

func (a *App) Signup(ctx context.Context) error {
	login, err := readLine(a.reader, a.out, "Login code (10-20 letters and digits)")
	if err != nil {
		return err
	}
	email, err := readLine(a.reader, a.out, "Email")
	if err != nil {
		return err
	}
	pw, err := readSecret(a.out, "Password")
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	acc, err := a.api.Signup(ctx, &gs.SignupRequest{LoginCode: login, Password: pw, Email: email})
	if err != nil {
		a.printError(err)
		return err
	}

	a.accountID = acc.ID
	fmt.Fprintf(a.out, "Registered %s (id %s). A verification code was sent to %s.\n", acc.LoginCode, acc.ID, acc.Email)
	return nil
}

func (a *App) Confirm(ctx context.Context) error {
	id := a.accountID
	if id == "" {
		var err error
		if id, err = readLine(a.reader, a.out, "Account id"); err != nil {
			return err
		}
	}
	code, err := readLine(a.reader, a.out, "Verification code")
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	acc, err := a.api.ConfirmEmail(ctx, id, code)
	if err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintf(a.out, "Account %s is now %s\n", acc.LoginCode, acc.Status)
	return nil
}

func (a *App) Resend(ctx context.Context) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()

	if err := a.api.ResendVerificationCode(ctx); err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintln(a.out, "A new verification code was sent")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	login, err := readLine(a.reader, a.out, "Login code")
	if err != nil {
		return err
	}
	pw, err := readSecret(a.out, "Password")
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	session, err := a.api.Authenticate(ctx, login, pw)
	if err != nil {
		a.printError(err)
		return err
	}

	a.accountID = session.Principal.AccountID
	a.loginCode = session.Principal.LoginCode
	fmt.Fprintf(a.out, "Signed in as %s (%s), session valid until %s\n",
		session.Principal.LoginCode, session.Principal.Status, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	ctx, cancel := a.timeout(ctx)
	defer cancel()

	p, err := a.api.WhoAmI(ctx)
	if err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintf(a.out, "%s id=%s role=%s status=%s\n", p.LoginCode, p.AccountID, p.Role, p.Status)
	return nil
}

func (a *App) Profile(ctx context.Context, args []string) error {
	id := a.accountID
	if len(args) > 0 {
		id = args[0]
	}
	if id == "" {
		fmt.Fprintln(a.out, "Usage: profile <account id>")
		return nil
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	p, err := a.api.GetProfile(ctx, id)
	if err != nil {
		a.printError(err)
		return err
	}

	fmt.Fprintf(a.out, "%s <%s> %s\n", p.LoginCode, p.Email, p.Status)
	if p.Name != "" {
		fmt.Fprintf(a.out, "  name: %s\n", p.Name)
	}
	if p.Introduction != "" {
		fmt.Fprintf(a.out, "  about: %s\n", strings.ReplaceAll(p.Introduction, "\n", "\n         "))
	}
	if p.ProfileImageURL != "" {
		fmt.Fprintf(a.out, "  image: %s\n", p.ProfileImageURL)
	}
	return nil
}

func (a *App) Update(ctx context.Context) error {
	name, err := readLine(a.reader, a.out, "New name (empty keeps current)")
	if err != nil {
		return err
	}
	email, err := readLine(a.reader, a.out, "New email (empty keeps current)")
	if err != nil {
		return err
	}
	intro, err := readText(a.reader, a.out, "New introduction (empty keeps current)")
	if err != nil {
		return err
	}
	current, err := readSecret(a.out, "Current password")
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	p, err := a.api.UpdateProfile(ctx, &gs.UpdateProfileRequest{
		AccountID:       a.accountID,
		Name:            name,
		Email:           email,
		Introduction:    intro,
		CurrentPassword: current,
	})
	if err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintf(a.out, "Profile of %s updated\n", p.LoginCode)
	return nil
}

// maxImageSize mirrors the server's default upload limit so oversized files
// are rejected before they are sent.
const maxImageSize = 10 << 20

func (a *App) Avatar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Fprintln(a.out, "Usage: avatar <path to image>")
		return nil
	}
	path := args[0]

	data, err := filex.ReadLimited(path, maxImageSize)
	if err != nil {
		fmt.Fprintf(a.out, "Error: %v\n", err)
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	url, err := a.api.AttachProfileImage(ctx, &gs.AttachProfileImageRequest{
		AccountID:   a.accountID,
		Filename:    filepath.Base(path),
		ContentType: filex.ContentType(path, data),
		Data:        data,
	})
	if err != nil {
		a.printError(err)
		return err
	}
	fmt.Fprintf(a.out, "Profile image uploaded: %s\n", url)
	return nil
}

func (a *App) Resign(ctx context.Context) error {
	ok, err := confirm(a.reader, a.out, "Disable your account permanently?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	pw, err := readSecret(a.out, "Password")
	if err != nil {
		return err
	}

	ctx, cancel := a.timeout(ctx)
	defer cancel()

	if err := a.api.Resign(ctx, a.accountID, pw); err != nil {
		a.printError(err)
		return err
	}

	a.Logout(ctx)
	fmt.Fprintln(a.out, "Account disabled")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.api.Logout()
	a.loginCode = ""
	return nil
}
