package main

import (
	"fmt"
	"os"
	"time"

	"github.com/Black-And-White-Club/pitwall-bot/app"
	badgeservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/application"
	badgedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/badge/domain"
	raceservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/application"
	rankingservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/application"
	rankingdomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/ranking/domain"
	"github.com/urfave/cli/v2"
)

const adminLog = "pitwall-admin.log"

func seasonCommand() *cli.Command {
	return &cli.Command{
		Name:  "season",
		Usage: "season management",
		Subcommands: []*cli.Command{
			{
				Name:  "create",
				Usage: "create a season",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "year", Required: true},
					&cli.BoolFlag{Name: "activate", Value: true, Usage: "make it the active season"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						season, err := a.Races.CreateSeason(c.Context, c.Int("year"), c.Bool("activate"))
						if err != nil {
							return err
						}
						fmt.Printf("Created season %d (id %d, active %t)\n", season.Year, season.ID, season.IsActive)
						return nil
					})
				},
			},
			{
				Name:  "close",
				Usage: "grant season awards and finish the season",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "season", Required: true},
					&cli.BoolFlag{Name: "now", Usage: "run here instead of queueing a job"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						seasonID := c.Int64("season")
						if !c.Bool("now") {
							if err := a.Queue.EnqueueSeasonClose(c.Context, seasonID); err != nil {
								return err
							}
							fmt.Printf("Queued close of season %d\n", seasonID)
							return nil
						}
						granted, err := a.Races.CloseSeason(c.Context, seasonID)
						if err != nil {
							return err
						}
						fmt.Printf("Closed season %d, %d awards granted\n", seasonID, granted)
						return nil
					})
				},
			},
		},
	}
}

func raceCommand() *cli.Command {
	return &cli.Command{
		Name:  "race",
		Usage: "race management",
		Subcommands: []*cli.Command{
			{
				Name:  "schedule",
				Usage: "schedule a race; times accept RFC3339, \"2006-01-02 15:04\" or phrases like \"next friday 14:00\"",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "season", Usage: "defaults to the active season"},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "country"},
					&cli.StringFlag{Name: "date", Required: true, Usage: "race start"},
					&cli.StringFlag{Name: "opens", Usage: "bets open at"},
					&cli.StringFlag{Name: "closes", Usage: "bets close at"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						req := raceservice.ScheduleRaceRequest{
							SeasonID: c.Int64("season"),
							Name:     c.String("name"),
							Country:  c.String("country"),
						}
						var err error
						if req.RaceDate, err = a.Races.ResolveTime(c.String("date")); err != nil {
							return err
						}
						if req.BetsOpenAt, err = optionalTime(a.Races, c.String("opens")); err != nil {
							return err
						}
						if req.BetsCloseAt, err = optionalTime(a.Races, c.String("closes")); err != nil {
							return err
						}

						race, err := a.Races.ScheduleRace(c.Context, req)
						if err != nil {
							return err
						}
						fmt.Printf("Scheduled race %d %q on %s\n", race.ID, race.Name, race.RaceDate.Format(time.RFC3339))
						return nil
					})
				},
			},
			{
				Name:  "result",
				Usage: "publish the official result and queue scoring",
				Flags: append([]cli.Flag{&cli.Int64Flag{Name: "race", Required: true}}, pickFlags...),
				Action: func(c *cli.Context) error {
					picks, err := picksFromFlags(c)
					if err != nil {
						return err
					}
					return withApp(c, adminLog, func(a *app.App) error {
						result, err := a.Races.PublishResult(c.Context, c.Int64("race"), picks)
						if err != nil {
							return err
						}
						fmt.Printf("Stored result %d for race %d, scoring queued\n", result.ID, result.RaceID)
						return nil
					})
				},
			},
			{
				Name:  "score",
				Usage: "score a race now against its stored result",
				Flags: []cli.Flag{&cli.Int64Flag{Name: "race", Required: true}},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						summary, err := a.Scoring.CalculateRacePoints(c.Context, c.Int64("race"))
						if err != nil {
							return err
						}
						fmt.Printf("Race %d: %d bets scored, %d points, %d badges, %d rivalries\n",
							summary.RaceID, summary.Processed, summary.PointsAwarded, summary.BadgesGranted, summary.RivalriesResolved)
						return nil
					})
				},
			},
			{
				Name:  "jobs",
				Usage: "list scoring jobs of a race",
				Flags: []cli.Flag{&cli.Int64Flag{Name: "race", Required: true}},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						jobs, err := a.Queue.GetRaceJobs(c.Context, c.Int64("race"))
						if err != nil {
							return err
						}
						for _, j := range jobs {
							fmt.Printf("%d\t%s\t%s\tattempt %d/%d\t%s\n", j.ID, j.Kind, j.State, j.Attempt, j.MaxAttempts, j.CreatedAt)
						}
						return nil
					})
				},
			},
		},
	}
}

func optionalTime(races raceservice.Service, expr string) (*time.Time, error) {
	if expr == "" {
		return nil, nil
	}
	t, err := races.ResolveTime(expr)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func betCommand() *cli.Command {
	return &cli.Command{
		Name:  "bet",
		Usage: "place or replace a bet for a user",
		Flags: append([]cli.Flag{
			&cli.Int64Flag{Name: "user", Required: true},
			&cli.Int64Flag{Name: "race", Required: true},
		}, pickFlags...),
		Action: func(c *cli.Context) error {
			picks, err := picksFromFlags(c)
			if err != nil {
				return err
			}
			return withApp(c, adminLog, func(a *app.App) error {
				bet, err := a.Scoring.PlaceBet(c.Context, c.Int64("user"), c.Int64("race"), picks)
				if err != nil {
					return err
				}
				fmt.Printf("Bet %d stored for user %d on race %d\n", bet.ID, bet.UserID, bet.RaceID)
				return nil
			})
		},
	}
}

func teamCommand() *cli.Command {
	return &cli.Command{
		Name:  "team",
		Usage: "team membership",
		Subcommands: []*cli.Command{
			{
				Name: "create",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "season", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.Int64Flag{Name: "captain", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						team, err := a.Teams.CreateTeam(c.Context, c.Int64("season"), c.String("name"), c.Int64("captain"))
						if err != nil {
							return err
						}
						fmt.Printf("Created team %d %q\n", team.ID, team.Name)
						return nil
					})
				},
			},
			{
				Name: "join",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Required: true},
					&cli.Int64Flag{Name: "user", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						team, err := a.Teams.Join(c.Context, c.Int64("team"), c.Int64("user"))
						if err != nil {
							return err
						}
						fmt.Printf("User %d joined team %d %q\n", c.Int64("user"), team.ID, team.Name)
						return nil
					})
				},
			},
			{
				Name: "leave",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "season", Required: true},
					&cli.Int64Flag{Name: "user", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						change, err := a.Teams.Leave(c.Context, c.Int64("season"), c.Int64("user"))
						if err != nil {
							return err
						}
						fmt.Printf("User %d left team %d, %d points debited\n", change.UserID, change.TeamID, change.PointsDebited)
						return nil
					})
				},
			},
			{
				Name: "kick",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "team", Required: true},
					&cli.Int64Flag{Name: "captain", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						change, err := a.Teams.KickPartner(c.Context, c.Int64("team"), c.Int64("captain"))
						if err != nil {
							return err
						}
						fmt.Printf("User %d removed from team %d, %d points debited\n", change.UserID, change.TeamID, change.PointsDebited)
						return nil
					})
				},
			},
		},
	}
}

func rivalryCommand() *cli.Command {
	respond := func(accept bool) cli.ActionFunc {
		return func(c *cli.Context) error {
			return withApp(c, adminLog, func(a *app.App) error {
				respondFn := a.Rivalries.Decline
				if accept {
					respondFn = a.Rivalries.Accept
				}
				r, err := respondFn(c.Context, c.Int64("rivalry"), c.Int64("user"))
				if err != nil {
					return err
				}
				fmt.Printf("Rivalry %d is now %s\n", r.ID, r.Status)
				return nil
			})
		}
	}
	respondFlags := []cli.Flag{
		&cli.Int64Flag{Name: "rivalry", Required: true},
		&cli.Int64Flag{Name: "user", Required: true},
	}

	return &cli.Command{
		Name:  "rivalry",
		Usage: "head-to-head challenges",
		Subcommands: []*cli.Command{
			{
				Name: "challenge",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Required: true},
					&cli.Int64Flag{Name: "opponent", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						r, err := a.Rivalries.Challenge(c.Context, c.Int64("user"), c.Int64("opponent"))
						if err != nil {
							return err
						}
						fmt.Printf("Rivalry %d created for race %d\n", r.ID, r.RaceID)
						return nil
					})
				},
			},
			{Name: "accept", Flags: respondFlags, Action: respond(true)},
			{Name: "decline", Flags: respondFlags, Action: respond(false)},
			{
				Name: "history",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Required: true},
					&cli.BoolFlag{Name: "finished", Usage: "only finished rivalries"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						rivalries, err := a.Rivalries.History(c.Context, c.Int64("user"), c.Bool("finished"))
						if err != nil {
							return err
						}
						for _, r := range rivalries {
							winner := "-"
							if r.WinnerID != nil {
								winner = fmt.Sprint(*r.WinnerID)
							}
							fmt.Printf("%d\trace %d\t%d vs %d\t%s\twinner %s\tmargin %d\n",
								r.ID, r.RaceID, r.ChallengerID, r.OpponentID, r.Status, winner, r.Margin)
						}
						return nil
					})
				},
			},
		},
	}
}

func achievementCommand() *cli.Command {
	return &cli.Command{
		Name:  "achievement",
		Usage: "achievement catalogue",
		Subcommands: []*cli.Command{
			{
				Name: "create",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "code", Required: true},
					&cli.StringFlag{Name: "name", Required: true},
					&cli.StringFlag{Name: "description"},
					&cli.StringFlag{Name: "icon"},
					&cli.StringFlag{Name: "color"},
					&cli.StringFlag{Name: "rule", Required: true, Usage: "rule type, e.g. TOTAL_POINTS or PILOT_RANKING"},
					&cli.IntFlag{Name: "threshold", Required: true},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						ach, err := a.Badges.CreateAchievement(c.Context, badgeservice.CreateAchievementRequest{
							Code:        c.String("code"),
							Name:        c.String("name"),
							Description: c.String("description"),
							Icon:        c.String("icon"),
							Color:       c.String("color"),
							RuleType:    badgedomain.RuleKind(c.String("rule")),
							Threshold:   c.Int("threshold"),
						})
						if err != nil {
							return err
						}
						fmt.Printf("Created achievement %d %s\n", ach.ID, ach.Code)
						return nil
					})
				},
			},
			{
				Name: "list",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Usage: "list what this user earned instead of the catalogue"},
					&cli.BoolFlag{Name: "unseen"},
				},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						if !c.IsSet("user") {
							all, err := a.Badges.ListAchievements(c.Context)
							if err != nil {
								return err
							}
							for _, ach := range all {
								fmt.Printf("%s %s\t%s\t%s >= %d\n", ach.Icon, ach.Code, ach.Name, ach.RuleType, ach.Threshold)
							}
							return nil
						}
						earned, err := a.Badges.ListUserAchievements(c.Context, c.Int64("user"), c.Bool("unseen"))
						if err != nil {
							return err
						}
						for _, ua := range earned {
							fmt.Printf("%d\t%s\t%s\n", ua.ID, ua.Achievement.Code, ua.EarnedAt.Format(time.RFC3339))
						}
						return nil
					})
				},
			},
			{
				Name: "seen",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "user", Required: true},
					&cli.StringFlag{Name: "ids", Required: true, Usage: "comma separated user achievement ids"},
				},
				Action: func(c *cli.Context) error {
					ids, err := parseIDs(c.String("ids"))
					if err != nil {
						return err
					}
					return withApp(c, adminLog, func(a *app.App) error {
						n, err := a.Badges.MarkSeen(c.Context, c.Int64("user"), ids)
						if err != nil {
							return err
						}
						fmt.Printf("Marked %d achievements as seen\n", n)
						return nil
					})
				},
			},
		},
	}
}

func standingsCommand() *cli.Command {
	seasonFlag := &cli.Int64Flag{Name: "season", Required: true}
	categoryFlag := &cli.StringFlag{Name: "category", Value: string(rankingdomain.CategoryDriver), Usage: "DRIVER or TEAM"}

	return &cli.Command{
		Name:  "standings",
		Usage: "season standings",
		Subcommands: []*cli.Command{
			{
				Name:  "refresh",
				Usage: "rebuild the standings cache",
				Flags: []cli.Flag{seasonFlag},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						return a.Rankings.RefreshLeaderboard(c.Context, c.Int64("season"))
					})
				},
			},
			{
				Name:  "show",
				Flags: []cli.Flag{seasonFlag, categoryFlag},
				Action: func(c *cli.Context) error {
					category, err := rankingdomain.ParseCategory(c.String("category"))
					if err != nil {
						return err
					}
					return withApp(c, adminLog, func(a *app.App) error {
						entries, err := a.Rankings.GetStandings(c.Context, c.Int64("season"), category)
						if err != nil {
							return err
						}
						for _, e := range entries {
							fmt.Printf("%d\t%d\t%d\n", e.Position, e.EntityID, e.Points)
						}
						return nil
					})
				},
			},
			{
				Name:  "export",
				Usage: "write both categories to an xlsx workbook",
				Flags: []cli.Flag{seasonFlag, &cli.StringFlag{Name: "out", Value: "standings.xlsx"}},
				Action: func(c *cli.Context) error {
					return withApp(c, adminLog, func(a *app.App) error {
						f, err := os.Create(c.String("out"))
						if err != nil {
							return err
						}
						if err := a.Rankings.ExportXLSX(c.Context, c.Int64("season"), f); err != nil {
							f.Close()
							return err
						}
						return f.Close()
					})
				},
			},
			{
				Name:  "chart",
				Usage: "render the top entries of a category as a PNG",
				Flags: []cli.Flag{
					seasonFlag,
					categoryFlag,
					&cli.IntFlag{Name: "top", Value: rankingservice.DefaultChartSize},
					&cli.StringFlag{Name: "out", Value: "standings.png"},
				},
				Action: func(c *cli.Context) error {
					category, err := rankingdomain.ParseCategory(c.String("category"))
					if err != nil {
						return err
					}
					return withApp(c, adminLog, func(a *app.App) error {
						png, err := a.Rankings.RenderChart(c.Context, c.Int64("season"), category, c.Int("top"))
						if err != nil {
							return err
						}
						return os.WriteFile(c.String("out"), png, 0o644)
					})
				},
			},
		},
	}
}
