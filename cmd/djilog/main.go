package main

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ruteri/djilog-keychain/api"
	"github.com/ruteri/djilog-keychain/api/keychainapi"
	"github.com/ruteri/djilog-keychain/cmd/flags"
	"github.com/ruteri/djilog-keychain/decoder"
	"github.com/ruteri/djilog-keychain/interfaces"
	"github.com/ruteri/djilog-keychain/keychain"
	"github.com/ruteri/djilog-keychain/storage"
	"github.com/urfave/cli/v2"
)

var DjilogLogServiceFlag = flags.LogServiceFlagFn("djilog")

var flagHexInput = &cli.StringFlag{
	Name:  "hex",
	Usage: "input bytes as a hex string",
}
var flagFileInput = &cli.StringFlag{
	Name:    "file",
	Aliases: []string{"f"},
	Usage:   "read input bytes from a file, - for stdin",
}
var flagSkipInvalid = &cli.BoolFlag{
	Name:  "skip-invalid",
	Usage: "skip records that fail to decode instead of aborting",
}
var flagRequest = &cli.StringFlag{
	Name:     "request",
	Required: true,
	Usage:    "JSON keychains request file",
}
var flagApiKey = &cli.StringFlag{
	Name:    "api-key",
	EnvVars: []string{"DJI_API_KEY"},
	Usage:   "key service api key",
}
var flagEndpoint = &cli.StringFlag{
	Name:  "endpoint",
	Value: keychainapi.DefaultEndpoint,
	Usage: "key service endpoint",
}
var flagCache = &cli.StringSliceFlag{
	Name:  "cache",
	Usage: "keychain cache location (file://, s3://, vault://), repeat for several",
}
var flagKeychain = &cli.StringFlag{
	Name:     "keychain",
	Required: true,
	Usage:    "JSON file with the keychain entries",
}
var flagFeaturePoint = &cli.StringFlag{
	Name:     "feature-point",
	Required: true,
	Usage:    "feature point of the payload, e.g. FR_Standardization_Feature_DJIFlyCustom_7",
}
var flagStrict = &cli.BoolFlag{
	Name:  "strict",
	Usage: "fail on keychain entries that are not valid base64",
}

func readInput(cCtx *cli.Context) ([]byte, error) {
	hexInput := cCtx.String(flagHexInput.Name)
	fileInput := cCtx.String(flagFileInput.Name)

	switch {
	case hexInput != "" && fileInput != "":
		return nil, errors.New("only one of --hex and --file may be given")
	case hexInput != "":
		data, err := hex.DecodeString(strings.TrimPrefix(hexInput, "0x"))
		if err != nil {
			return nil, fmt.Errorf("invalid hex input: %w", err)
		}
		return data, nil
	case fileInput == "-":
		data, err := io.ReadAll(cCtx.App.Reader)
		if err != nil {
			return nil, interfaces.NewIOError("stdin", err)
		}
		return data, nil
	case fileInput != "":
		data, err := os.ReadFile(fileInput)
		if err != nil {
			return nil, interfaces.NewIOError(fileInput, err)
		}
		return data, nil
	default:
		return nil, errors.New("one of --hex or --file is required")
	}
}

func policy(cCtx *cli.Context) decoder.Policy {
	if cCtx.Bool(flagSkipInvalid.Name) {
		return decoder.SkipInvalid
	}
	return decoder.AbortOnError
}

func printJSON(cCtx *cli.Context, v any) error {
	enc := json.NewEncoder(cCtx.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return interfaces.NewSerializationError("output", err)
	}
	return nil
}

func decodeCustomAction(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	data, err := readInput(cCtx)
	if err != nil {
		return err
	}

	records, err := decoder.NewSession(nil, logger).DecodeCustoms(data, policy(cCtx))
	if err != nil {
		return err
	}
	return printJSON(cCtx, records)
}

func fetchKeychainsAction(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	reqData, err := os.ReadFile(cCtx.String(flagRequest.Name))
	if err != nil {
		return interfaces.NewIOError(cCtx.String(flagRequest.Name), err)
	}

	var req api.KeychainsRequest
	if err := json.Unmarshal(reqData, &req); err != nil {
		return interfaces.NewSerializationError("keychains request", err)
	}

	var cache interfaces.StorageBackend
	if uris := cCtx.StringSlice(flagCache.Name); len(uris) > 0 {
		locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
		for _, uri := range uris {
			location, err := interfaces.NewStorageBackendLocation(uri)
			if err != nil {
				return err
			}
			locations = append(locations, location)
		}

		cache, err = storage.NewStorageBackendFactory(logger).CreateMultiBackend(locations)
		if err != nil {
			return fmt.Errorf("could not create keychain cache: %w", err)
		}
	}

	client := &keychainapi.Client{Endpoint: cCtx.String(flagEndpoint.Name)}
	provider := keychainapi.NewProvider(client, cache, logger)

	entries, err := provider.FetchKeychains(cCtx.Context, cCtx.String(flagApiKey.Name), &req)
	if err != nil {
		return err
	}
	return printJSON(cCtx, entries)
}

func decryptAction(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	fp, err := interfaces.ParseFeaturePoint(cCtx.String(flagFeaturePoint.Name))
	if err != nil {
		return interfaces.NewParseError("feature point", err)
	}

	keychainData, err := os.ReadFile(cCtx.String(flagKeychain.Name))
	if err != nil {
		return interfaces.NewIOError(cCtx.String(flagKeychain.Name), err)
	}

	var entries []interfaces.KeychainEntry
	if err := json.Unmarshal(keychainData, &entries); err != nil {
		return interfaces.NewSerializationError("keychain entries", err)
	}

	kc := keychain.FromEntries(entries)
	if cCtx.Bool(flagStrict.Name) {
		kc, err = keychain.FromEntriesStrict(entries)
		if err != nil {
			return err
		}
	}

	ciphertext, err := readInput(cCtx)
	if err != nil {
		return err
	}

	session := decoder.NewSession(kc, logger)
	plaintext, err := session.Decrypt(fp, ciphertext)
	if err != nil {
		return err
	}

	records, err := session.DecodeCustoms(plaintext, policy(cCtx))
	if err != nil {
		return err
	}
	return printJSON(cCtx, records)
}

func main() {
	logFlags := append([]cli.Flag{DjilogLogServiceFlag}, flags.LogFlags...)

	app := &cli.App{
		Name:  "djilog",
		Usage: "Decode flight-log records",
		Flags: logFlags,
		Commands: []*cli.Command{
			{
				Name:  "decode",
				Usage: "Decode plaintext records",
				Subcommands: []*cli.Command{
					{
						Name:   "custom",
						Usage:  "Decode consecutive Custom records",
						Flags:  []cli.Flag{flagHexInput, flagFileInput, flagSkipInvalid},
						Action: decodeCustomAction,
					},
				},
			},
			{
				Name:  "keychain",
				Usage: "Fetch keychains and decrypt payloads",
				Subcommands: []*cli.Command{
					{
						Name:   "fetch",
						Usage:  "Request keychains from the key service",
						Flags:  []cli.Flag{flagRequest, flagApiKey, flagEndpoint, flagCache},
						Action: fetchKeychainsAction,
					},
					{
						Name:   "decrypt",
						Usage:  "Decrypt a payload and decode its Custom records",
						Flags:  []cli.Flag{flagKeychain, flagFeaturePoint, flagStrict, flagHexInput, flagFileInput, flagSkipInvalid},
						Action: decryptAction,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
