package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bwops/metastack/internal/sslcert"
	"github.com/bwops/metastack/internal/stack"
)

var sslCmd = &cobra.Command{
	Use:   "ssl",
	Short: "Manage the TLS certificate",
	Long:  sslDescription,
}

func init() {
	sslCmd.AddCommand(sslBootstrapCmd, sslIssueCmd, sslRenewCmd, sslSelfSignedCmd, sslInfoCmd)
}

var sslBootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Issue a certificate, falling back to self-signed",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		m := sslcert.NewManager(a.Config(), a.DB())
		sm := stack.NewManager(a.Config())
		return m.Bootstrap(cmd.Context(), sm)
	},
}

var sslIssueCmd = &cobra.Command{
	Use:   "issue",
	Short: "Issue a certificate via certbot",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		m := sslcert.NewManager(a.Config(), a.DB())
		if err := m.Issue(cmd.Context()); err != nil {
			return err
		}
		sm := stack.NewManager(a.Config())
		return m.ReloadProxy(cmd.Context(), sm)
	},
}

var sslRenewCmd = &cobra.Command{
	Use:   "renew",
	Short: "Renew the certificate if it is close to expiry",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		m := sslcert.NewManager(a.Config(), a.DB())
		if !m.NeedsRenewal() {
			fmt.Println("certificate does not need renewal yet")
			return nil
		}
		if err := m.Renew(cmd.Context()); err != nil {
			return err
		}
		sm := stack.NewManager(a.Config())
		return m.ReloadProxy(cmd.Context(), sm)
	},
}

var sslSelfSignedCmd = &cobra.Command{
	Use:   "selfsigned",
	Short: "Generate a self-signed certificate",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		m := sslcert.NewManager(a.Config(), a.DB())
		if err := m.SelfSigned(); err != nil {
			return err
		}
		sm := stack.NewManager(a.Config())
		return m.ReloadProxy(cmd.Context(), sm)
	},
}

var sslInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the current certificate details",
	RunE: func(cmd *cobra.Command, args []string) error {
		a := loadApp()
		defer a.Release()
		m := sslcert.NewManager(a.Config(), a.DB())
		info, err := m.CertInfo()
		if err != nil {
			return err
		}
		fmt.Printf("subject:    %s\n", info.Subject.CommonName)
		fmt.Printf("issuer:     %s\n", info.Issuer.CommonName)
		fmt.Printf("not before: %s\n", info.NotBefore)
		fmt.Printf("not after:  %s\n", info.NotAfter)
		fmt.Printf("renewal:    needed=%v\n", m.NeedsRenewal())
		return nil
	},
}
