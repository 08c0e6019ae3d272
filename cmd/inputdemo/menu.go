package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui"
	imageui "github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	ebtext "github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
)

type menuItem struct {
	label  string
	run    func()
	button *widget.Button
}

// menu is the overlay shown while the menu context is active. Mouse clicks
// and the Navigate/Confirm actions both drive it.
type menu struct {
	ui       *ebitenui.UI
	items    []*menuItem
	selected int
	open     bool
}

func newMenu(g *Game) *menu {
	m := &menu{}
	m.items = []*menuItem{
		{label: "Resume", run: func() { g.setMenuOpen(false) }},
		{label: "Reset player", run: func() { g.resetPlayer(); g.setMenuOpen(false) }},
		{label: "Copy trace", run: g.copyTrace},
		{label: "Quit", run: func() { g.quit = true }},
	}

	panelImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x00, G: 0x00, B: 0x00, A: 200})
	btnImg := imageui.NewNineSliceColor(color.NRGBA{R: 0x33, G: 0x33, B: 0x33, A: 255})
	btnHover := imageui.NewNineSliceColor(color.NRGBA{R: 0x55, G: 0x55, B: 0x55, A: 255})

	var face ebtext.Face = ebtext.NewGoXFace(basicfont.Face7x13)
	white := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	btnTextColor := &widget.ButtonTextColor{Idle: white}

	title := widget.NewText(
		widget.TextOpts.Text("Menu", &face, white),
		widget.TextOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter})),
	)

	panel := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(panelImg),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(10),
			widget.RowLayoutOpts.Padding(&widget.Insets{Top: 20, Bottom: 20, Left: 30, Right: 30}),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(screenWidth/3, screenHeight/3),
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{HorizontalPosition: widget.AnchorLayoutPositionCenter, VerticalPosition: widget.AnchorLayoutPositionCenter}),
		),
	)
	panel.AddChild(title)

	for i, item := range m.items {
		item.button = widget.NewButton(
			widget.ButtonOpts.Image(&widget.ButtonImage{Idle: btnImg, Hover: btnHover, Pressed: btnHover}),
			widget.ButtonOpts.Text(item.label, &face, btnTextColor),
			widget.ButtonOpts.WidgetOpts(widget.WidgetOpts.LayoutData(widget.RowLayoutData{Position: widget.RowLayoutPositionCenter, Stretch: true})),
			widget.ButtonOpts.ClickedHandler(func(*widget.ButtonClickedEventArgs) {
				m.selected = i
				m.activate()
			}),
		)
		panel.AddChild(item.button)
	}

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	root.AddChild(panel)
	m.ui = &ebitenui.UI{Container: root}
	m.sync()
	return m
}

// move shifts the selection; positive dy is up.
func (m *menu) move(dy float32) {
	switch {
	case dy > 0:
		m.selected--
	case dy < 0:
		m.selected++
	default:
		return
	}
	n := len(m.items)
	m.selected = (m.selected%n + n) % n
	m.sync()
}

func (m *menu) activate() {
	if !m.open || m.selected < 0 || m.selected >= len(m.items) {
		return
	}
	m.items[m.selected].run()
}

// sync marks the selected entry in the button labels.
func (m *menu) sync() {
	if !m.open {
		m.selected = 0
	}
	for i, item := range m.items {
		label := item.label
		if i == m.selected {
			label = "> " + label + " <"
		}
		item.button.Text().Label = label
	}
}
