package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/bft-labs/shiplog/internal/domain"
	"github.com/bft-labs/shiplog/internal/nmea"
	"github.com/bft-labs/shiplog/pkg/ais"
)

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <sentence>...",
		Short: "Decode AIS or NMEA sentences and print the result",
		Long: `Decodes each argument. !AIVDM sentences print the AIS frame and
navigational status. Other sentences are applied in order to an empty
record, which is printed at the end.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(cmd.OutOrStdout(), args)
		},
	}
}

type decodedFrame struct {
	Sentence    string `json:"sentence"`
	MessageType int    `json:"message_type"`
	MMSI        uint32 `json:"mmsi"`
	NavStatus   int    `json:"nav_status"`
	StatusName  string `json:"nav_status_name"`
	Channel     string `json:"channel"`
}

func runDecode(w io.Writer, sentences []string) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	registry := nmea.DefaultRegistry()
	var entry domain.LogEntry
	var applied int

	for _, s := range sentences {
		s = strings.TrimSpace(s)
		if strings.HasPrefix(s, ais.ArmorPrefix) {
			f, err := ais.Decode(s)
			if err != nil {
				return fmt.Errorf("decode %q: %w", s, err)
			}
			if err := enc.Encode(decodedFrame{
				Sentence:    s,
				MessageType: f.MessageType,
				MMSI:        f.MMSI,
				NavStatus:   int(f.NavigationalStatus),
				StatusName:  f.NavigationalStatus.String(),
				Channel:     f.Channel,
			}); err != nil {
				return err
			}
			continue
		}
		if registry.ApplyLines(&entry, []string{s}) == 0 {
			return fmt.Errorf("decode %q: %w", s, domain.ErrUnsupportedSentence)
		}
		applied++
	}

	if applied > 0 {
		return enc.Encode(entry)
	}
	return nil
}
