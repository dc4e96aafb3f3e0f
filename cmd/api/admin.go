package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/xiebiao/librarydesk/internal/domain/user"
	"github.com/xiebiao/librarydesk/internal/infrastructure/persistence/rdb"
)

func newCreateAdminCmd(configFile *string) *cobra.Command {
	var email, name string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "创建管理员账号(交互式输入密码)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			password, err := readNewPassword()
			if err != nil {
				return err
			}

			db, cleanup, err := provideDB(cfg, log)
			if err != nil {
				return err
			}
			defer cleanup()

			svc := provideUserService(rdb.NewUserRepository(db), rdb.NewTransactionRepository(db), rdb.NewTxManager(db))
			u, err := svc.CreateMember(cmd.Context(), user.Profile{
				Name:     name,
				Email:    email,
				Password: password,
				Role:     user.RoleAdmin,
			})
			if err != nil {
				return err
			}

			log.Info("管理员已创建", zap.Uint("user_id", u.ID), zap.String("email", u.Email))
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "管理员邮箱")
	cmd.Flags().StringVar(&name, "name", "管理员", "管理员姓名")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readNewPassword 两次输入密码,不回显
func readNewPassword() (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("create-admin需要在终端中运行")
	}

	read := func(prompt string) (string, error) {
		fmt.Fprint(os.Stderr, prompt)
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", fmt.Errorf("读取密码失败: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}

	first, err := read("密码: ")
	if err != nil {
		return "", err
	}
	second, err := read("确认密码: ")
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("两次输入的密码不一致")
	}
	return first, nil
}
