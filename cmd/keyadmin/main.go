package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/ruteri/djilog-keychain/httpserver"
	"github.com/ruteri/djilog-keychain/kms"
	"github.com/urfave/cli/v2"
)

// ShamirAdminsConfig is the admins file read by httpserver.LoadAdminKeys.
type ShamirAdminsConfig struct {
	Admins []ShamirAdminMetadata `json:"admins"`
}

type ShamirAdminMetadata struct {
	ID     string `json:"id"`
	PubKey string `json:"pubkey"`
}

// ShareFile holds one administrator's share of the master key.
type ShareFile struct {
	AdminID    string `json:"admin_id"`
	ShareIndex int    `json:"share_index"`
	Share      []byte `json:"share"`
}

var flagAdminServer = &cli.StringFlag{
	Name:  "admin-server-addr",
	Value: "http://127.0.0.1:8081/admin",
	Usage: "Key server admin API address",
}
var flagAdminPrivkey = &cli.StringFlag{
	Name:  "admin-privkey-file",
	Value: "admin-private.pem",
	Usage: "Path to admin private key",
}
var flagAdminPubkey = &cli.StringFlag{
	Name:  "admin-pubkey-file",
	Value: "admin-public.pem",
	Usage: "Path to admin public key",
}
var flagShamirAdmins = &cli.StringFlag{
	Name:  "shamir-admins-file",
	Value: "shamir-admins.json",
	Usage: "Path to the admins file",
}
var flagShamirShare = &cli.StringFlag{
	Name:  "shamir-share-file",
	Value: "shamir-share.json",
	Usage: "Path to the admin's share file",
}
var flagSharesDir = &cli.StringFlag{
	Name:  "shares-dir",
	Value: ".",
	Usage: "Directory to write share files to",
}
var flagShamirThreshold = &cli.IntFlag{
	Name:  "shamir-threshold",
	Value: 2,
	Usage: "Number of shares required to rebuild the master key",
}
var flagMasterKey = &cli.StringFlag{
	Name:     "master-key",
	Required: true,
	Usage:    "hex-encoded master key to split",
}

func loadAdminCredentials(cCtx *cli.Context) (*httpserver.AdminClient, error) {
	publicKeyPEM, err := os.ReadFile(cCtx.String(flagAdminPubkey.Name))
	if err != nil {
		return nil, err
	}

	privateKeyPEM, err := os.ReadFile(cCtx.String(flagAdminPrivkey.Name))
	if err != nil {
		return nil, err
	}

	privateKey, err := httpserver.ParsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, err
	}

	return httpserver.NewAdminClient(cCtx.String(flagAdminServer.Name), kms.Fingerprint(publicKeyPEM), privateKey), nil
}

func main() {
	app := &cli.App{
		Name:           "keyadmin",
		Usage:          "Manage the key server master key shares",
		DefaultCommand: "status",
		Commands: []*cli.Command{
			{
				Name:  "status",
				Usage: "Print the key server unlock state",
				Flags: []cli.Flag{flagAdminServer},
				Action: func(cCtx *cli.Context) error {
					adminClient := httpserver.NewAdminClient(cCtx.String(flagAdminServer.Name), "", nil)
					status, err := adminClient.GetStatus(cCtx.Context)
					if err != nil {
						return err
					}

					fmt.Fprintf(cCtx.App.Writer, "%s (%d/%d shares)\n", status.State, status.Received, status.Threshold)
					return nil
				},
			},
			{
				Name:  "generate-admin",
				Usage: "Generate an administrator key pair",
				Flags: []cli.Flag{flagAdminPrivkey, flagAdminPubkey},
				Action: func(cCtx *cli.Context) error {
					privateKeyPEM, publicKeyPEM, err := httpserver.GenerateAdminKeyPair()
					if err != nil {
						return err
					}

					if err := os.WriteFile(cCtx.String(flagAdminPrivkey.Name), []byte(privateKeyPEM), 0600); err != nil {
						return err
					}
					return os.WriteFile(cCtx.String(flagAdminPubkey.Name), []byte(publicKeyPEM), 0600)
				},
			},
			{
				Name:  "generate-shamir-config",
				Usage: "Write the admins file from administrator public keys",
				Flags: []cli.Flag{
					flagShamirAdmins,
					&cli.StringSliceFlag{
						Name:     "admin-pubkey-files",
						Required: true,
					},
				},
				Action: func(cCtx *cli.Context) error {
					config := ShamirAdminsConfig{}
					for _, pubkeyFile := range cCtx.StringSlice("admin-pubkey-files") {
						publicKeyPEM, err := os.ReadFile(pubkeyFile)
						if err != nil {
							return err
						}
						config.Admins = append(config.Admins, ShamirAdminMetadata{
							ID:     kms.Fingerprint(publicKeyPEM),
							PubKey: string(publicKeyPEM),
						})
					}

					configBytes, err := json.MarshalIndent(config, "", "  ")
					if err != nil {
						return err
					}
					return os.WriteFile(cCtx.String(flagShamirAdmins.Name), configBytes, 0600)
				},
			},
			{
				Name:  "split-master-key",
				Usage: "Split a master key into one share file per admin",
				Flags: []cli.Flag{flagMasterKey, flagShamirAdmins, flagShamirThreshold, flagSharesDir},
				Action: func(cCtx *cli.Context) error {
					masterKey, err := hex.DecodeString(cCtx.String(flagMasterKey.Name))
					if err != nil {
						return fmt.Errorf("invalid master key: %w", err)
					}

					adminsFile, err := os.Open(cCtx.String(flagShamirAdmins.Name))
					if err != nil {
						return err
					}
					defer adminsFile.Close()

					var config ShamirAdminsConfig
					if err := json.NewDecoder(adminsFile).Decode(&config); err != nil {
						return fmt.Errorf("failed to decode admins file: %w", err)
					}

					pubKeys := make([][]byte, 0, len(config.Admins))
					for _, admin := range config.Admins {
						pubKeys = append(pubKeys, []byte(admin.PubKey))
					}

					shares, err := kms.SplitMasterKey(masterKey, kms.ShamirConfig{
						Threshold:    cCtx.Int(flagShamirThreshold.Name),
						AdminPubKeys: pubKeys,
					})
					if err != nil {
						return err
					}

					for i, admin := range config.Admins {
						shareJSON, err := json.Marshal(ShareFile{AdminID: admin.ID, ShareIndex: i, Share: shares[i]})
						if err != nil {
							return err
						}
						path := filepath.Join(cCtx.String(flagSharesDir.Name), "share-"+admin.ID+".json")
						if err := os.WriteFile(path, shareJSON, 0600); err != nil {
							return err
						}
						fmt.Fprintln(cCtx.App.Writer, path)
					}
					return nil
				},
			},
			{
				Name:  "submit-share",
				Usage: "Sign and submit a share to a locked key server",
				Flags: []cli.Flag{flagAdminServer, flagAdminPrivkey, flagAdminPubkey, flagShamirShare},
				Action: func(cCtx *cli.Context) error {
					adminClient, err := loadAdminCredentials(cCtx)
					if err != nil {
						return err
					}

					shareJSON, err := os.ReadFile(cCtx.String(flagShamirShare.Name))
					if err != nil {
						return err
					}

					var share ShareFile
					if err := json.Unmarshal(shareJSON, &share); err != nil {
						return err
					}

					return adminClient.SubmitShare(cCtx.Context, share.ShareIndex, share.Share)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
