package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/djilog-keychain/cmd/flags"
	"github.com/ruteri/djilog-keychain/httpserver"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/kms"
	"github.com/urfave/cli/v2"
)

var MasterKeyFlag = &cli.StringFlag{
	Name:  "master-key",
	Usage: "hex-encoded master key (at least 32 bytes)",
}

var MasterKeyShareFlag = &cli.StringSliceFlag{
	Name:  "master-key-share",
	Usage: "hex-encoded Shamir share of the master key, repeat for each share",
}

var AdminKeysFlag = &cli.StringFlag{
	Name:  "shamir-admin-keys-file",
	Usage: "JSON file with admin public keys; the server starts locked until admins submit their shares",
}

var ThresholdFlag = &cli.IntFlag{
	Name:  "shamir-threshold",
	Value: 2,
	Usage: "number of admin shares required to unlock",
}

var AdminListenAddrFlag = &cli.StringFlag{
	Name:  "admin-listen-addr",
	Value: "127.0.0.1:8081",
	Usage: "address to listen on for the admin API while locked",
}

var UnlockTimeoutFlag = &cli.IntFlag{
	Name:  "unlock-timeout",
	Value: 86400,
	Usage: "seconds to wait for admins to unlock the server",
}

var IssuerFlags = []cli.Flag{
	MasterKeyFlag,
	MasterKeyShareFlag,
	AdminKeysFlag,
	ThresholdFlag,
	AdminListenAddrFlag,
	UnlockTimeoutFlag,
}

// adminRoutes mounts the admin API under /admin.
type adminRoutes struct {
	handler *httpserver.AdminHandler
}

func (a adminRoutes) RegisterRoutes(r chi.Router) {
	r.Mount("/admin", a.handler.AdminRouter())
}

// SetupIssuer builds the key issuer from exactly one of the master key
// sources. With an admin keys file it serves the admin API and blocks until
// the admins have unlocked the issuer.
func SetupIssuer(cCtx *cli.Context, logger *slog.Logger) (interfaces.KeyIssuer, error) {
	masterKeyHex := cCtx.String(MasterKeyFlag.Name)
	shareHexes := cCtx.StringSlice(MasterKeyShareFlag.Name)
	adminKeysFile := cCtx.String(AdminKeysFlag.Name)

	sources := 0
	for _, set := range []bool{masterKeyHex != "", len(shareHexes) > 0, adminKeysFile != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		return nil, errors.New("exactly one of --master-key, --master-key-share or --shamir-admin-keys-file is required")
	}

	switch {
	case masterKeyHex != "":
		logger.Info("Using master key from flags")
		masterKey, err := hex.DecodeString(masterKeyHex)
		if err != nil {
			return nil, fmt.Errorf("invalid master-key: %w", err)
		}
		return newSimpleIssuer(masterKey)

	case len(shareHexes) > 0:
		logger.Info("Combining master key shares", "count", len(shareHexes))
		shares := make([][]byte, 0, len(shareHexes))
		for i, shareHex := range shareHexes {
			share, err := hex.DecodeString(shareHex)
			if err != nil {
				return nil, fmt.Errorf("invalid master-key-share %d: %w", i, err)
			}
			shares = append(shares, share)
		}

		masterKey, err := kms.CombineMasterKeyShares(shares)
		if err != nil {
			return nil, err
		}
		return newSimpleIssuer(masterKey)

	default:
		return unlockWithAdmins(cCtx, logger, adminKeysFile)
	}
}

func newSimpleIssuer(masterKey []byte) (interfaces.KeyIssuer, error) {
	issuer, err := kms.NewSimpleIssuer(masterKey)
	if err != nil {
		return nil, err
	}
	return issuer, nil
}

func unlockWithAdmins(cCtx *cli.Context, logger *slog.Logger, adminKeysFile string) (interfaces.KeyIssuer, error) {
	logger.Info("Loading admin keys", "file", adminKeysFile)
	adminKeysData, err := os.Open(adminKeysFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open admin keys file: %w", err)
	}
	defer adminKeysData.Close()

	adminKeys, err := httpserver.LoadAdminKeys(adminKeysData)
	if err != nil {
		return nil, fmt.Errorf("failed to load admin keys: %w", err)
	}
	logger.Info("Admin keys loaded successfully", "count", len(adminKeys))

	pubKeys := make([][]byte, 0, len(adminKeys))
	for _, pubKey := range adminKeys {
		pubKeys = append(pubKeys, pubKey)
	}

	issuer, err := kms.NewShamirIssuerRecovery(kms.ShamirConfig{
		Threshold:    cCtx.Int(ThresholdFlag.Name),
		AdminPubKeys: pubKeys,
	})
	if err != nil {
		return nil, fmt.Errorf("could not initialize shamir issuer: %w", err)
	}

	adminHandler := httpserver.NewAdminHandler(logger, issuer, adminKeys)

	adminCfg := flags.ConfigureServer(cCtx, logger, cCtx.String(AdminListenAddrFlag.Name))
	adminCfg.MetricsAddr = ""
	adminServer := httpserver.New(adminCfg, nil, adminRoutes{adminHandler})

	logger.Info("Starting admin API, waiting for shares")
	adminServer.RunInBackground()
	defer adminServer.Shutdown()

	timeout := time.Duration(cCtx.Int(UnlockTimeoutFlag.Name)) * time.Second
	ctx, cancel := context.WithTimeout(cCtx.Context, timeout)
	defer cancel()

	if err := adminHandler.WaitForUnlock(ctx); err != nil {
		return nil, fmt.Errorf("issuer was not unlocked: %w", err)
	}

	logger.Info("Issuer unlocked")
	return issuer, nil
}
