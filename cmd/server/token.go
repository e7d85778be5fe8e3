package main

import (
	"encoding/json"
	"io"

	"github.com/jrsteele09/go-tenant-auth/token"
	"github.com/spf13/cobra"
)

func newTokenCmd(loadConfig configLoader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Token utilities",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "inspect <jwt>",
		Short: "Verify a token with the configured secret and print its claims",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig()
			if err != nil {
				return err
			}
			codec, err := newCodec(c)
			if err != nil {
				return err
			}
			return inspectToken(cmd.OutOrStdout(), codec, args[0])
		},
	})
	return cmd
}

type inspection struct {
	Status string        `json:"status"`
	Claims *token.Claims `json:"claims,omitempty"`
	Error  string        `json:"error,omitempty"`
}

func inspectToken(w io.Writer, codec *token.Codec, raw string) error {
	out := inspection{Status: codec.Status(raw).String()}
	claims, err := codec.Decode(raw)
	if err != nil {
		out.Error = err.Error()
	} else {
		out.Claims = claims
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
