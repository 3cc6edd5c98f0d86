package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"

	"connect3d/session"
)

const maxStackedPopups = 4

// Popups shows transient messages as pages on top of the game. Every
// message gets its own page and timer, so overlapping messages dismiss
// independently.
type Popups struct {
	pages    *tview.Pages
	palette  Palette
	dispatch func(func())
	after    func(time.Duration, func())
	refocus  func()

	seq  int
	live map[string]*tview.TextView
	slot map[string]int
}

// NewPopups adds popups to pages. dispatch runs a function on the UI
// thread; refocus gives focus back to the game after a popup is added.
func NewPopups(pages *tview.Pages, palette Palette, dispatch func(func()), refocus func()) *Popups {
	return &Popups{
		pages:    pages,
		palette:  palette,
		dispatch: dispatch,
		after:    func(d time.Duration, f func()) { time.AfterFunc(d, f) },
		refocus:  refocus,
		live:     make(map[string]*tview.TextView),
		slot:     make(map[string]int),
	}
}

// ShowTransientMessage implements session.Notifier.
func (p *Popups) ShowTransientMessage(text string, tone session.Tone, d time.Duration) {
	p.seq++
	name := fmt.Sprintf("popup-%d", p.seq)

	tv := tview.NewTextView().SetText(text).SetTextAlign(tview.AlignCenter)
	tv.SetBorder(true)
	tv.SetBorderColor(p.palette.Tone(tone))
	tv.SetTextColor(p.palette.Tone(tone))

	slot := p.freeSlot()
	width := len([]rune(text)) + 4
	row := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 0, 1, false).
		AddItem(tv, width, 0, false).
		AddItem(nil, 0, 1, false)
	frame := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 1+slot*3, 0, false).
		AddItem(row, 3, 0, false).
		AddItem(nil, 0, 1, false)

	p.live[name] = tv
	p.slot[name] = slot
	p.pages.AddPage(name, frame, true, true)
	if p.refocus != nil {
		p.refocus()
	}

	p.after(d, func() {
		p.dispatch(func() { p.dismiss(name) })
	})
}

func (p *Popups) freeSlot() int {
	used := make(map[int]bool, len(p.slot))
	for _, s := range p.slot {
		used[s] = true
	}
	for s := 0; s < maxStackedPopups; s++ {
		if !used[s] {
			return s
		}
	}
	return maxStackedPopups - 1
}

func (p *Popups) dismiss(name string) {
	if _, ok := p.live[name]; !ok {
		return
	}
	delete(p.live, name)
	delete(p.slot, name)
	p.pages.RemovePage(name)
	if p.refocus != nil {
		p.refocus()
	}
}

// Clear dismisses every message.
func (p *Popups) Clear() {
	for name := range p.live {
		p.dismiss(name)
	}
}

// Len returns the number of messages on screen.
func (p *Popups) Len() int {
	return len(p.live)
}

// Contains reports whether a message covers screen position (x, y).
func (p *Popups) Contains(x, y int) bool {
	for _, tv := range p.live {
		rx, ry, w, h := tv.GetRect()
		if x >= rx && x < rx+w && y >= ry && y < ry+h {
			return true
		}
	}
	return false
}
