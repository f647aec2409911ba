package main

import (
	"image/color"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"minitac/pkg/utils"
)

const (
	screenWidth  = 800
	screenHeight = 600

	listingLines = 30
	lineHeight   = 16

	panelX    = 420
	panelY    = 24
	panelW    = 372
	panelH    = 300
	panelCols = 2
	cellW     = panelW / panelCols
	cellH     = 16

	outputLines = 14
)

type Game struct {
	dbg      *Debugger
	panelImg *ebiten.Image // reused variable panel canvas
}

func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyN) {
		g.dbg.Step()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.dbg.ToggleRun()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		g.dbg.Restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyS) {
		if err := g.dbg.Snapshot(); err != nil {
			g.dbg.Status = "snapshot failed: " + err.Error()
		}
	}
	g.dbg.Tick()
	return nil
}

func (g *Game) drawVarPanel(screen *ebiten.Image) {
	if g.panelImg == nil {
		g.panelImg = ebiten.NewImage(panelW, panelH)
	}
	rgba := renderVarPanel(g.dbg.VarCells(), panelCols, cellW, cellH, panelW, panelH)
	g.panelImg.WritePixels(rgba.Pix)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(panelX, panelY)
	screen.DrawImage(g.panelImg, op)
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(color.RGBA{0x00, 0x00, 0x00, 0xFF})

	for i, line := range g.dbg.Listing(listingLines) {
		ebitenutil.DebugPrintAt(screen, line, 8, 8+i*lineHeight)
	}

	ebitenutil.DebugPrintAt(screen, "variables", panelX, panelY-lineHeight)
	g.drawVarPanel(screen)

	outY := panelY + panelH + 8
	ebitenutil.DebugPrintAt(screen, "output", panelX, outY)
	for i, line := range g.dbg.OutputTail(outputLines) {
		ebitenutil.DebugPrintAt(screen, line, panelX, outY+(i+1)*lineHeight)
	}

	ebitenutil.DebugPrintAt(screen, g.dbg.Status, 8, screenHeight-2*lineHeight)
	ebitenutil.DebugPrintAt(screen, "space/n step  r run/pause  s snapshot  backspace restart", 8, screenHeight-lineHeight)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("usage: %s <file.src|file.tac|file.snapshot.zip>", os.Args[0])
	}

	fullPath, _, err := utils.GetPathInfo(os.Args[1])
	if err != nil {
		log.Fatalf("Failed to resolve path: %v", err)
	}
	prog, resume, err := loadProgram(fullPath)
	if err != nil {
		log.Fatalf("Failed to load program: %v", err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("minitac debugger")

	game := &Game{dbg: NewDebugger(fullPath, prog, resume)}
	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
