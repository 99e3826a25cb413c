package game

import "time"

const (
	MaxAlerts = 1
	AlertTTL  = 30 * time.Second
	BannerTTL = 5 * time.Second
)

// AlertKind names a game message.
type AlertKind string

const (
	AlertCueBallPocketed   AlertKind = "cue_ball_pocketed"
	AlertColouredPocketed  AlertKind = "coloured_ball_pocketed"
	AlertRedPocketed       AlertKind = "red_ball_pocketed"
	AlertTwoColouredInARow AlertKind = "two_coloured_balls"
)

var alertText = map[AlertKind]string{
	AlertTwoColouredInARow: "Two consecutive coloured balls pocketed! 🌸🎱",
	AlertCueBallPocketed:   "❌ Foul: 🤦🏾‍♂️ Uh-oh! Cue ball's pocketed, pal.",
	AlertRedPocketed:       "🎱 Nice shot! A red ball's pocketed!",
	AlertColouredPocketed:  "❌ Foul: 🤦🏽‍♂️ Oi, blimey! Ya should've sunk the red ball, ya muppet!",
}

const bannerText = "Two consecutive coloured balls pocketed!"

// Foul reports whether the alert marks a foul.
func (k AlertKind) Foul() bool {
	return k == AlertCueBallPocketed || k == AlertColouredPocketed
}

// Alert is a timestamped message shown to the player.
type Alert struct {
	Kind     AlertKind `json:"kind" msgpack:"kind"`
	Message  string    `json:"message" msgpack:"message"`
	RaisedAt time.Time `json:"raised_at" msgpack:"raised_at"`
}

// AlertFeed keeps the newest alerts, dropping the oldest past its capacity
// and any that have outlived their TTL.
type AlertFeed struct {
	max    int
	ttl    time.Duration
	items  []Alert
	banner *Alert
}

func NewAlertFeed() *AlertFeed {
	return &AlertFeed{max: MaxAlerts, ttl: AlertTTL}
}

// Raise records an alert of kind at now.
func (f *AlertFeed) Raise(kind AlertKind, now time.Time) Alert {
	a := Alert{Kind: kind, Message: alertText[kind], RaisedAt: now}
	f.items = append(f.items, a)
	if len(f.items) > f.max {
		f.items = f.items[len(f.items)-f.max:]
	}
	return a
}

// ShowBanner puts a short centred message over the table.
func (f *AlertFeed) ShowBanner(now time.Time) {
	f.banner = &Alert{Kind: AlertTwoColouredInARow, Message: bannerText, RaisedAt: now}
}

// Expire drops everything older than its TTL.
func (f *AlertFeed) Expire(now time.Time) {
	kept := f.items[:0]
	for _, a := range f.items {
		if now.Sub(a.RaisedAt) < f.ttl {
			kept = append(kept, a)
		}
	}
	f.items = kept
	if f.banner != nil && now.Sub(f.banner.RaisedAt) >= BannerTTL {
		f.banner = nil
	}
}

// Active returns the alerts still showing, oldest first.
func (f *AlertFeed) Active() []Alert {
	out := make([]Alert, len(f.items))
	copy(out, f.items)
	return out
}

// Banner returns the centred message, if one is up.
func (f *AlertFeed) Banner() (Alert, bool) {
	if f.banner == nil {
		return Alert{}, false
	}
	return *f.banner, true
}
