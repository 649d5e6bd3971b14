package raceservice

import (
	"fmt"

	notifyservice "github.com/Black-And-White-Club/pitwall-bot/app/modules/notify/application"
	racedomain "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/domain"
	racedb "github.com/Black-And-White-Club/pitwall-bot/app/modules/race/infrastructure/repositories"
)

const (
	linkBetMaker  = "/bet-maker"
	linkDashboard = "/dashboard"
)

func betsOpenedNotification(race *racedb.Race) notifyservice.Notification {
	return notifyservice.Notification{
		Audience: notifyservice.Everyone(),
		Title:    fmt.Sprintf("Bets open: %s", race.Name),
		Body:     fmt.Sprintf("The grid for the %s GP is open. Place your picks!", race.Country),
		DeepLink: linkBetMaker,
	}
}

func betsClosedNotification(race *racedb.Race) notifyservice.Notification {
	return notifyservice.Notification{
		Audience: notifyservice.Everyone(),
		Title:    "Box closed!",
		Body:     fmt.Sprintf("Bets are closed for %s. Good luck!", race.Name),
		DeepLink: linkDashboard,
	}
}

func alertNotification(race *racedb.Race, alert racedomain.Alert) notifyservice.Notification {
	n := notifyservice.Notification{
		Audience: notifyservice.Everyone(),
		DeepLink: linkBetMaker,
	}
	switch alert {
	case racedomain.AlertOneHour:
		n.Title = "1 hour left"
		n.Body = fmt.Sprintf("Betting for %s closes in about an hour.", race.Name)
	case racedomain.AlertFiveMinutes:
		n.Title = "Final 5 minutes!"
		n.Body = fmt.Sprintf("Last call for %s. Lock in your picks now.", race.Name)
	}
	return n
}
