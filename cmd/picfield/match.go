package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/reoring/picfield/picture"
)

var errNoMatch = errors.New("no match")

type matchResult struct {
	Picture  string `json:"picture"`
	Text     string `json:"text"`
	Pattern  string `json:"pattern"`
	Width    int    `json:"width"`
	Match    bool   `json:"match"`
	Position int    `json:"position"`
}

func newMatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match PICTURE TEXT",
		Short: "Check TEXT against a picture clause; exits non-zero on mismatch",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := picture.CompileWith(args[0], picture.Options{ExpandRepeats: a.cfg.ExpandRepeats})
			if err != nil {
				return err
			}
			if c.ZeroWidthOnly() {
				a.log.Warn("picture matches only empty text", zap.String("picture", args[0]))
			}
			pos := c.Mismatch(args[1])
			res := matchResult{
				Picture:  c.String(),
				Text:     args[1],
				Pattern:  c.Describe(),
				Width:    c.Width(),
				Match:    pos < 0,
				Position: pos,
			}
			text := "match"
			if !res.Match {
				text = fmt.Sprintf("mismatch at position %d", pos)
			}
			if err := a.emit(text, res); err != nil {
				return err
			}
			if !res.Match {
				return errNoMatch
			}
			return nil
		},
	}
}
