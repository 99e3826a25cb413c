// Package desktop runs a local snooker session in an ebiten window.
package desktop

import (
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"go.uber.org/zap"
	"golang.org/x/image/colornames"

	"github.com/playmatatu/neonsnooker/internal/game"
)

var (
	backgroundColor = color.RGBA{0x10, 0x10, 0x14, 0xff}
	clothColor      = color.RGBA{0x0b, 0x6e, 0x2e, 0xff}
	railColor       = color.RGBA{0x4a, 0x2a, 0x12, 0xff}
	cushionColor    = color.RGBA{0x09, 0x55, 0x22, 0xff}
	pocketColor     = color.RGBA{0x05, 0x05, 0x05, 0xff}
	lineColor       = color.RGBA{0xee, 0xee, 0xee, 0x90}
	cueColor        = color.RGBA{0xd9, 0xb3, 0x82, 0xff}
	alertColor      = color.RGBA{0xff, 0x45, 0x45, 0xff}
)

// inputFrame is the raw input sampled from ebiten for one Update.
type inputFrame struct {
	cursor  game.Vec2
	moved   bool
	clicked bool
	keys    []game.Key
	up      bool
	down    bool
}

// Shell adapts a game.Session to ebiten.Game.
type Shell struct {
	session *game.Session
	snap    game.Snapshot
	dt      time.Duration
	last    game.Vec2
	up      bool
	down    bool
	log     *zap.Logger
}

// NewShell wraps session. tickRate should match ebiten's TPS.
func NewShell(session *game.Session, tickRate int, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	if tickRate <= 0 {
		tickRate = game.DefaultTickRate
	}
	return &Shell{
		session: session,
		snap:    session.Snapshot(),
		dt:      time.Second / time.Duration(tickRate),
		log:     log,
	}
}

type keyBinding struct {
	key  ebiten.Key
	sends game.Key
}

// shellKeys is checked in order, so two keys pressed in one frame reach the
// session in this order.
var shellKeys = []keyBinding{
	{ebiten.KeyDigit1, game.KeyMode1},
	{ebiten.KeyDigit2, game.KeyMode2},
	{ebiten.KeyDigit3, game.KeyMode3},
	{ebiten.KeyDigit4, game.KeyPower},
	{ebiten.KeyT, game.KeyTrail},
	{ebiten.KeyR, game.KeyReset},
}

func (s *Shell) sample() inputFrame {
	x, y := ebiten.CursorPosition()
	f := inputFrame{
		cursor:  game.Vec2{X: float64(x), Y: float64(y)},
		clicked: inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft),
		up:      ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW),
		down:    ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS),
	}
	f.moved = f.cursor != s.last
	for _, kb := range shellKeys {
		if inpututil.IsKeyJustPressed(kb.key) {
			f.keys = append(f.keys, kb.sends)
		}
	}
	return f
}

// inputsFrom turns a sampled frame into session inputs. Force keys are only
// reported when they change.
func (s *Shell) inputsFrom(f inputFrame) []game.Input {
	var out []game.Input
	if f.moved {
		out = append(out, game.Input{Kind: game.InputPointer, X: f.cursor.X, Y: f.cursor.Y})
		s.last = f.cursor
	}
	if f.clicked {
		out = append(out, game.Input{Kind: game.InputClick, X: f.cursor.X, Y: f.cursor.Y, Button: game.ButtonLeft})
	}
	for _, k := range f.keys {
		out = append(out, game.Input{Kind: game.InputKey, Key: k})
	}
	if f.up != s.up || f.down != s.down {
		out = append(out, game.Input{Kind: game.InputForce, Up: f.up, Down: f.down})
		s.up, s.down = f.up, f.down
	}
	return out
}

// step applies inputs and advances the session by one tick.
func (s *Shell) step(inputs []game.Input) {
	for _, in := range inputs {
		if err := in.Apply(s.session); err != nil {
			s.log.Debug("input rejected", zap.String("type", string(in.Kind)), zap.Error(err))
		}
	}
	s.session.Tick(s.dt)
	s.snap = s.session.Snapshot()
}

// Update implements ebiten.Game.
func (s *Shell) Update() error {
	s.step(s.inputsFrom(s.sample()))
	return nil
}

// Draw implements ebiten.Game.
func (s *Shell) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	t := s.session.Table()

	fillRect(screen, t.Surface, clothColor)
	for _, r := range t.Rails {
		fillRect(screen, r, railColor)
	}
	for _, c := range t.Cushions {
		strokePolygon(screen, c.Vertices, 2, cushionColor)
	}
	for _, p := range t.Pockets {
		vector.DrawFilledCircle(screen, f32(p.Position.X), f32(p.Position.Y), f32(p.Diameter/2), pocketColor, true)
	}
	drawD(screen, t.DZone)

	if b := s.snap.Boost; b != nil {
		vector.StrokeCircle(screen, f32(b.Center.X), f32(b.Center.Y), f32(b.Size/2), 2, parseColor(b.Color), true)
	}

	for _, b := range s.snap.Balls {
		fill := parseColor(b.Fill)
		for i, p := range b.Trail {
			a := uint8(40 + 160*(i+1)/(len(b.Trail)+1))
			vector.DrawFilledCircle(screen, f32(p.X), f32(p.Y), f32(b.Diameter/4), withAlpha(fill, a), true)
		}
		r := f32(b.Diameter / 2)
		vector.DrawFilledCircle(screen, f32(b.Position.X), f32(b.Position.Y), r, fill, true)
		vector.StrokeCircle(screen, f32(b.Position.X), f32(b.Position.Y), r, 1, parseColor(b.Stroke), true)
	}

	if s.snap.Cue.Visible {
		tip, butt := cueLine(s.snap.Cue)
		vector.StrokeLine(screen, f32(butt.X), f32(butt.Y), f32(tip.X), f32(tip.Y), f32(s.snap.Cue.Width), cueColor, true)
	}

	s.drawHUD(screen)
}

func (s *Shell) drawHUD(screen *ebiten.Image) {
	hud := fmt.Sprintf("mode %d  force %.0f%%", s.snap.Mode, s.snap.Cue.ForceLevel*100)
	if s.snap.PowerMode {
		hud += "  power"
	}
	ebitenutil.DebugPrintAt(screen, hud, 8, 4)

	y := int(s.session.Table().FrameHeight) - 18
	for _, a := range s.snap.Alerts {
		ebitenutil.DebugPrintAt(screen, a.Message, 8, y)
		y -= 16
	}
	if s.snap.Banner != nil {
		x := int(s.session.Table().FrameWidth/2) - len(s.snap.Banner.Message)*3
		vector.DrawFilledRect(screen, float32(x-6), 20, float32(len(s.snap.Banner.Message)*6+12), 20, alertColor, false)
		ebitenutil.DebugPrintAt(screen, s.snap.Banner.Message, x, 22)
	}
}

// Layout implements ebiten.Game.
func (s *Shell) Layout(_, _ int) (int, int) {
	t := s.session.Table()
	return int(t.FrameWidth), int(t.FrameHeight)
}

// cueLine returns the tip and butt of the cue. The cue points along its
// angle towards the ball, so the butt sits a cue length behind the tip.
func cueLine(c game.CueState) (tip, butt game.Vec2) {
	tip = c.Anchor
	butt = tip.Minus(game.FromAngle(c.Angle).Times(c.Length))
	return tip, butt
}

func drawD(screen *ebiten.Image, d game.DZone) {
	const segments = 24
	prev := d.Center.Plus(game.Vec2{Y: -d.Radius})
	for i := 1; i <= segments; i++ {
		a := -math.Pi/2 - math.Pi*float64(i)/segments
		p := d.Center.Plus(game.Vec2{X: math.Cos(a) * d.Radius, Y: math.Sin(a) * d.Radius})
		vector.StrokeLine(screen, f32(prev.X), f32(prev.Y), f32(p.X), f32(p.Y), 1, lineColor, true)
		prev = p
	}
	vector.StrokeLine(screen, f32(d.Center.X), f32(d.Center.Y-d.Radius), f32(d.Center.X), f32(d.Center.Y+d.Radius), 1, lineColor, true)
}

func strokePolygon(screen *ebiten.Image, vs []game.Vec2, width float32, clr color.Color) {
	for i := range vs {
		a, b := vs[i], vs[(i+1)%len(vs)]
		vector.StrokeLine(screen, f32(a.X), f32(a.Y), f32(b.X), f32(b.Y), width, clr, true)
	}
}

func fillRect(screen *ebiten.Image, r game.Rect, clr color.Color) {
	vector.DrawFilledRect(screen, f32(r.X), f32(r.Y), f32(r.Width), f32(r.Height), clr, false)
}

func f32(v float64) float32 { return float32(v) }

// parseColor accepts #rgb, #rrggbb and CSS colour names. Anything else is
// drawn magenta.
func parseColor(s string) color.RGBA {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := colornames.Map[s]; ok {
		return c
	}
	if !strings.HasPrefix(s, "#") {
		return colornames.Magenta
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return colornames.Magenta
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return colornames.Magenta
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}
}

// withAlpha returns c at opacity a, premultiplied as color.RGBA expects.
func withAlpha(c color.RGBA, a uint8) color.RGBA {
	scale := func(v uint8) uint8 { return uint8(uint16(v) * uint16(a) / 0xff) }
	return color.RGBA{R: scale(c.R), G: scale(c.G), B: scale(c.B), A: a}
}
