package render

import (
	"math"

	"github.com/gdamore/tcell/v2"
	"github.com/l1jgo/asteroids/internal/component"
	"github.com/l1jgo/asteroids/internal/core/ecs"
	"github.com/l1jgo/asteroids/internal/data"
	"github.com/l1jgo/asteroids/internal/world"
	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// hudRows is the number of screen rows reserved above the arena.
const hudRows = 1

// drawOrder puts explosions behind ships and bullets.
var drawOrder = []component.SheetID{
	component.SheetExplosion,
	component.SheetAsteroid,
	component.SheetBullet,
	component.SheetShip,
}

// Renderer draws the arena and HUD onto a tcell screen. The arena is
// scaled to fill the screen below the HUD, with +Y pointing up.
type Renderer struct {
	screen  tcell.Screen
	sprites *data.SpriteTable
	printer *message.Printer
	styles  map[component.SheetID]tcell.Style
}

func NewRenderer(screen tcell.Screen, sprites *data.SpriteTable) *Renderer {
	r := &Renderer{
		screen:  screen,
		sprites: sprites,
		printer: message.NewPrinter(language.English),
		styles:  make(map[component.SheetID]tcell.Style),
	}
	for _, id := range drawOrder {
		style := tcell.StyleDefault.Background(tcell.ColorBlack)
		if s := sprites.Get(id); s != nil && s.Color != "" {
			style = style.Foreground(tcell.GetColor(s.Color))
		}
		r.styles[id] = style
	}
	return r
}

// ArenaToScreen maps an arena position to a screen cell.
func ArenaToScreen(p component.Vec2, arena world.Arena, cols, rows int) (sx, sy int) {
	h := rows - hudRows
	if cols < 1 || h < 1 {
		return 0, hudRows
	}
	fx := p.X / arena.Width
	fy := 1 - p.Y/arena.Height
	sx = int(math.Round(fx * float64(cols-1)))
	sy = hudRows + int(math.Round(fy*float64(h-1)))
	return min(max(sx, 0), cols-1), min(max(sy, hudRows), rows-1)
}

// HeadingFrame picks one of n heading glyphs for a rotation. Frame 0 faces
// up and frames advance counter-clockwise.
func HeadingFrame(rotation float64, n int) int {
	if n < 1 {
		return 0
	}
	turns := rotation / (2 * math.Pi)
	i := int(math.Round(turns*float64(n))) % n
	if i < 0 {
		i += n
	}
	return i
}

// DrawPlay renders one frame of the play state.
func (r *Renderer) DrawPlay(ws *world.State) {
	r.screen.Clear()
	cols, rows := r.screen.Size()

	for _, sheetID := range drawOrder {
		sheet := r.sprites.Get(sheetID)
		if sheet == nil {
			continue
		}
		style := r.styles[sheetID]
		ecs.Each2(ws.Sprites, ws.Transforms, func(_ ecs.EntityID, sp *component.Sprite, tr *component.Transform) {
			if sp.Sheet != sheetID {
				return
			}
			frame := sp.Frame
			if sheet.Rotates {
				frame = HeadingFrame(tr.Rotation, len(sheet.Frames))
			}
			sx, sy := ArenaToScreen(tr.Pos, ws.Arena, cols, rows)
			r.putGlyph(sx, sy, sheet.Glyph(frame), style)
		})
	}

	r.drawHUD(ws.Score.Value, cols)
	r.screen.Show()
}

func (r *Renderer) drawHUD(score int, cols int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorNavy)
	for x := 0; x < cols; x++ {
		r.screen.SetContent(x, 0, ' ', nil, style)
	}
	r.drawText(1, 0, r.FormatScore(score), style)
	hint := "arrows/wasd move  space fire  esc pause"
	r.drawText(cols-runewidth.StringWidth(hint)-1, 0, hint, style)
}

// FormatScore renders the score for the HUD with digit grouping.
func (r *Renderer) FormatScore(score int) string {
	return r.printer.Sprintf("Score %d", score)
}

// FormatNumber renders n with digit grouping.
func (r *Renderer) FormatNumber(n int) string {
	return r.printer.Sprintf("%d", n)
}

// DrawMessage clears the screen and centres the given lines on it.
func (r *Renderer) DrawMessage(lines ...string) {
	r.screen.Clear()
	cols, rows := r.screen.Size()
	style := tcell.StyleDefault.Foreground(tcell.ColorWhite)
	top := (rows - len(lines)) / 2
	for i, line := range lines {
		x := (cols - runewidth.StringWidth(line)) / 2
		r.drawText(max(x, 0), top+i, line, style)
	}
	r.screen.Show()
}

// putGlyph draws a single glyph, padding the second column of wide ones.
func (r *Renderer) putGlyph(x, y int, glyph string, style tcell.Style) {
	runes := []rune(glyph)
	if len(runes) == 0 {
		return
	}
	r.screen.SetContent(x, y, runes[0], runes[1:], style)
	if runewidth.StringWidth(glyph) == 2 {
		r.screen.SetContent(x+1, y, ' ', nil, style)
	}
}

func (r *Renderer) drawText(x, y int, text string, style tcell.Style) {
	col := x
	for _, ch := range text {
		r.screen.SetContent(col, y, ch, nil, style)
		col += max(runewidth.RuneWidth(ch), 1)
	}
}
