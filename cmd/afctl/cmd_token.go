package main

import (
	"fmt"
	"strings"

	"artisanal-futures/internal/pkg/jwt"

	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenEmail   string
	tokenRoles   []string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Development session tokens",
}

// tokenIssueCmd signs a session token with JWT_PRIVATE_KEY_PATH.
var tokenIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a signed session token",
	RunE:  runTokenIssue,
}

func init() {
	tokenIssueCmd.Flags().StringVar(&tokenSubject, "sub", "", "user id (required)")
	tokenIssueCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenIssueCmd.Flags().StringSliceVar(&tokenRoles, "role", []string{jwt.RoleUser}, "roles (repeatable)")
	_ = tokenIssueCmd.MarkFlagRequired("sub")
	tokenCmd.AddCommand(tokenIssueCmd)
}

func runTokenIssue(cmd *cobra.Command, args []string) error {
	if cfg.JWT.PrivPath == "" {
		return fmt.Errorf("JWT_PRIVATE_KEY_PATH is required to issue tokens")
	}

	manager, err := jwt.LoadAndBuild(cfg.JWT)
	if err != nil {
		return err
	}

	roles := make([]string, 0, len(tokenRoles))
	for _, r := range tokenRoles {
		roles = append(roles, strings.ToUpper(strings.TrimSpace(r)))
	}

	token, jti, err := manager.Generator.Generate(tokenSubject, tokenEmail, roles)
	if err != nil {
		return err
	}

	logger.Debug("token issued")
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", token)
	fmt.Fprintf(cmd.ErrOrStderr(), "jti: %s\n", jti)
	return nil
}
