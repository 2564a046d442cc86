// Copyright 2026 The caterlink Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/caterverse/caterlink/internal/auth"
)

// LoginOptions carries the command-line choices for an interactive sign-in.
type LoginOptions struct {
	// Email pre-fills the account; empty prompts on stdin.
	Email string

	// Remember persists the session across restarts.
	Remember bool
}

// DoLogin runs the interactive sign-in flow: prompt for missing credentials,
// exchange them with the backend, and report the outcome. The session record
// lands in the durable or in-memory vault backend depending on Remember.
func DoLogin(sessions *auth.Store, options *LoginOptions) {
	reader := bufio.NewReader(os.Stdin)

	email := options.Email
	if email == "" {
		fmt.Print("Email: ")
		line, err := reader.ReadString('\n')
		if err != nil {
			log.Errorf("failed to read email: %v", err)
			return
		}
		email = strings.TrimSpace(line)
	}
	if email == "" {
		log.Error("no email provided")
		return
	}

	fmt.Print("Password: ")
	line, err := reader.ReadString('\n')
	if err != nil {
		log.Errorf("failed to read password: %v", err)
		return
	}
	password := strings.TrimRight(line, "\r\n")

	if !sessions.Login(context.Background(), email, password, options.Remember) {
		log.Errorf("sign-in failed: %s", sessions.Err())
		return
	}

	user := sessions.User()
	if user != nil {
		fmt.Printf("Signed in as %s (tenant %s)\n", user.Email, user.TenantID)
	} else {
		fmt.Println("Signed in")
	}
	if options.Remember {
		fmt.Println("Session persisted; it will survive restarts.")
	} else {
		fmt.Println("Session held in memory only; it ends with this process.")
	}
}

// DoLogout removes the session record from every vault backend and clears
// the remember preference. Safe to run when nobody is signed in.
func DoLogout(sessions *auth.Store) {
	sessions.Logout()
	fmt.Println("Signed out")
}
