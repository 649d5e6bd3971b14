package main

import (
	"fmt"
	"strconv"
	"strings"

	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	"github.com/urfave/cli/v2"
)

var pickFlags = []cli.Flag{
	&cli.Int64Flag{Name: "pole", Usage: "pole position driver id", Required: true},
	&cli.Int64Flag{Name: "dotd", Usage: "driver of the day id", Required: true},
	&cli.Int64Flag{Name: "winning-team", Usage: "winning constructor id", Required: true},
	&cli.StringFlag{Name: "top10", Usage: "comma separated driver ids, P1 first", Required: true},
}

func picksFromFlags(c *cli.Context) (racedomain.Picks, error) {
	top10, err := parseTop10(c.String("top10"))
	if err != nil {
		return racedomain.Picks{}, err
	}
	return racedomain.Picks{
		PoleDriverID:  c.Int64("pole"),
		DotdDriverID:  c.Int64("dotd"),
		WinningTeamID: c.Int64("winning-team"),
		Top10:         top10,
	}, nil
}

// parseTop10 reads exactly ten distinct positive driver ids.
func parseTop10(v string) ([racedomain.TopPositions]int64, error) {
	var out [racedomain.TopPositions]int64

	parts := strings.Split(v, ",")
	if len(parts) != racedomain.TopPositions {
		return out, fmt.Errorf("top10 needs %d drivers, got %d", racedomain.TopPositions, len(parts))
	}

	seen := make(map[int64]bool, len(parts))
	for i, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return out, fmt.Errorf("top10 position %d: invalid driver id %q", i+1, p)
		}
		if seen[id] {
			return out, fmt.Errorf("top10 position %d: driver %d listed twice", i+1, id)
		}
		seen[id] = true
		out[i] = id
	}
	return out, nil
}

func parseIDs(v string) ([]int64, error) {
	var ids []int64
	for _, p := range strings.Split(v, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid id %q: %w", p, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
