// Package display hosts a visualization in a terminal. Two image rows share one
// character cell through the upper half block.
package display

import (
	"context"
	"fmt"
	"image"
	"math"

	"github.com/gdamore/tcell/v2"

	"github.com/ivlev/proteinframes/internal/config"
	"github.com/ivlev/proteinframes/internal/viewer"
)

const (
	halfBlock = '▀'

	// Один шаг клавиш в "пикселях страницы"
	LineStep = 40.0
	PageStep = 400.0

	// Как deltaY одного щелчка колеса в браузере
	WheelNotch = 100.0

	scrollHint = "Scroll to rotate"
)

// Target receives host signals. *viewer.Visualization implements it.
type Target interface {
	Scroll(scrollY float64)
	Wheel(deltaY float64)
	Resize(w, h int, dpr float64)
}

// Terminal maps terminal input to a Target and presents rendered frames.
type Terminal struct {
	screen tcell.Screen
	info   config.Structure
	target Target

	// только горутина событий
	scrollY float64
}

func NewTerminal(screen tcell.Screen, info config.Structure) *Terminal {
	return &Terminal{screen: screen, info: info}
}

// Attach sets the receiver of input signals.
func (t *Terminal) Attach(target Target) {
	t.target = target
}

// ScrollY is the virtual page scroll position.
func (t *Terminal) ScrollY() float64 {
	return t.scrollY
}

// Present draws img as half blocks plus the status overlay. img is expected to
// be cols x rows*2 device pixels.
func (t *Terminal) Present(img *image.RGBA, st viewer.Status) {
	t.screen.Clear()
	if img != nil {
		t.drawImage(img)
	}
	t.drawOverlay(st)
	t.screen.Show()
}

func (t *Terminal) drawImage(img *image.RGBA) {
	cols, rows := t.screen.Size()
	b := img.Bounds()
	for y := 0; y < rows; y++ {
		top := b.Min.Y + 2*y
		if top >= b.Max.Y {
			break
		}
		for x := 0; x < cols && b.Min.X+x < b.Max.X; x++ {
			px := b.Min.X + x
			fg, fgOK := cellColor(img, px, top)
			bg, bgOK := cellColor(img, px, top+1)
			if !fgOK && !bgOK {
				continue
			}
			style := tcell.StyleDefault.Foreground(fg).Background(bg)
			t.screen.SetContent(x, y, halfBlock, nil, style)
		}
	}
}

// cellColor returns the straight colour of a pixel; transparent pixels and
// pixels outside the image map to the terminal default.
func cellColor(img *image.RGBA, x, y int) (tcell.Color, bool) {
	if !(image.Point{X: x, Y: y}).In(img.Bounds()) {
		return tcell.ColorDefault, false
	}
	c := img.RGBAAt(x, y)
	if c.A == 0 {
		return tcell.ColorDefault, false
	}
	// Снимаем премультипликацию
	r := int32(c.R) * 255 / int32(c.A)
	g := int32(c.G) * 255 / int32(c.A)
	bl := int32(c.B) * 255 / int32(c.A)
	return tcell.NewRGBColor(r, g, bl), true
}

func (t *Terminal) drawOverlay(st viewer.Status) {
	cols, rows := t.screen.Size()
	if rows == 0 {
		return
	}
	style := tcell.StyleDefault.Foreground(tcell.NewRGBColor(0x33, 0x33, 0x33)).Background(tcell.NewRGBColor(0xfa, 0xfa, 0xfa))

	if st.Loading {
		msg := LoadingMessage(st.Progress)
		t.putText((cols-len(msg))/2, rows/2, msg, style)
		return
	}

	caption := t.info.Name
	if t.info.Description != "" {
		caption += " - " + t.info.Description
	}
	if caption != "" {
		t.putText(0, rows-1, caption, style.Bold(true))
	}
	t.putText(cols-len(scrollHint), rows-1, scrollHint, style)
}

func (t *Terminal) putText(x, y int, s string, style tcell.Style) {
	cols, _ := t.screen.Size()
	if x < 0 {
		x = 0
	}
	for _, r := range s {
		if x >= cols {
			return
		}
		t.screen.SetContent(x, y, r, nil, style)
		x++
	}
}

// LoadingMessage formats the progress overlay, rounding to whole percent.
func LoadingMessage(progress float64) string {
	return fmt.Sprintf("Loading protein structure... %d%%", int(math.Floor(progress+0.5)))
}

// HandleEvent applies one terminal event. It returns false when the user quits.
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		cols, rows := ev.Size()
		if t.target != nil {
			t.target.Resize(cols, rows*2, 1)
		}
		t.screen.Sync()

	case *tcell.EventMouse:
		// Колесо вращает структуру, но не двигает страницу
		switch {
		case ev.Buttons()&tcell.WheelUp != 0:
			t.wheel(-WheelNotch)
		case ev.Buttons()&tcell.WheelDown != 0:
			t.wheel(WheelNotch)
		}

	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyUp:
			t.scrollBy(-LineStep)
		case tcell.KeyDown:
			t.scrollBy(LineStep)
		case tcell.KeyPgUp:
			t.scrollBy(-PageStep)
		case tcell.KeyPgDn:
			t.scrollBy(PageStep)
		case tcell.KeyHome:
			t.scrollBy(-t.scrollY)
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q', 'Q':
				return false
			case 'k':
				t.scrollBy(-LineStep)
			case 'j':
				t.scrollBy(LineStep)
			}
		}
	}
	return true
}

func (t *Terminal) scrollBy(d float64) {
	t.scrollY = math.Max(0, t.scrollY+d)
	if t.target != nil {
		t.target.Scroll(t.scrollY)
	}
}

func (t *Terminal) wheel(d float64) {
	if t.target != nil {
		t.target.Wheel(d)
	}
}

// Run polls terminal events until the user quits or ctx is done. The current
// terminal size is reported to the target first.
func (t *Terminal) Run(ctx context.Context) {
	t.screen.EnableMouse()
	cols, rows := t.screen.Size()
	t.HandleEvent(tcell.NewEventResize(cols, rows))

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go t.screen.ChannelEvents(events, quit)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !t.HandleEvent(ev) {
				return
			}
		}
	}
}
