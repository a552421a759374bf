package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/vitrine3d/vitrine/internal/engine/measure"
	"github.com/vitrine3d/vitrine/internal/engine/weather"
	"github.com/vitrine3d/vitrine/internal/logger"
)

var labelColor = imgui.NewVec4(0.95, 0.85, 0.25, 1.0)

// frameTimer tracks per-frame delta time and a smoothed FPS estimate.
type frameTimer struct {
	last time.Time
	fps  float32
}

func (t *frameTimer) tick() float32 {
	now := time.Now()
	if t.last.IsZero() {
		t.last = now
		return 1.0 / 60
	}
	dt := float32(now.Sub(t.last).Seconds())
	t.last = now
	if dt > 0.25 {
		dt = 0.25
	}
	if dt > 0 {
		t.fps = t.fps*0.9 + (1/dt)*0.1
	}
	return dt
}

// render is called each frame to advance the session and draw the UI.
func (app *App) render() {
	// Process pending file dialog result on the main thread.
	if app.pendingAssetPath != "" {
		path := app.pendingAssetPath
		app.pendingAssetPath = ""
		idx := app.session.AddLocalAsset(path, filepath.Base(path))
		app.session.LoadAsset(idx)
	}

	app.handleShortcuts()

	dt := app.frameTimer.tick()
	app.session.Frame(dt)

	if imgui.BeginMainMenuBar() {
		if imgui.BeginMenu("File") {
			if imgui.MenuItemBool("Open Model...") {
				app.openAssetDialog()
			}
			imgui.Separator()
			if imgui.MenuItemBool("Exit") {
				os.Exit(0)
			}
			imgui.EndMenu()
		}
		imgui.EndMainMenuBar()
	}

	viewport := imgui.MainViewport()
	workPos := viewport.WorkPos()
	workSize := viewport.WorkSize()

	leftPanelWidth := float32(280)
	rightPanelWidth := float32(230)
	statusBarHeight := float32(30)
	contentHeight := workSize.Y - statusBarHeight

	flags := imgui.WindowFlagsNoMove | imgui.WindowFlagsNoResize | imgui.WindowFlagsNoCollapse

	// Left panel - product catalog
	imgui.SetNextWindowPos(workPos)
	imgui.SetNextWindowSize(imgui.NewVec2(leftPanelWidth, contentHeight))
	if imgui.BeginV("Products", nil, flags) {
		app.renderCatalogPanel()
	}
	imgui.End()

	// Center panel - stage viewport
	viewportWidth := workSize.X - leftPanelWidth - rightPanelWidth
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+leftPanelWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(viewportWidth, contentHeight))
	if imgui.BeginV("Stage", nil, flags) {
		app.renderViewport()
	}
	imgui.End()

	// Right panel - controls
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X+leftPanelWidth+viewportWidth, workPos.Y))
	imgui.SetNextWindowSize(imgui.NewVec2(rightPanelWidth, contentHeight))
	if imgui.BeginV("Controls", nil, flags) {
		app.renderControlsPanel()
	}
	imgui.End()

	// Status bar at bottom
	imgui.SetNextWindowPos(imgui.NewVec2(workPos.X, workPos.Y+contentHeight))
	imgui.SetNextWindowSize(imgui.NewVec2(workSize.X, statusBarHeight))
	statusFlags := flags | imgui.WindowFlagsNoTitleBar | imgui.WindowFlagsNoScrollbar
	if imgui.BeginV("##StatusBar", nil, statusFlags) {
		app.renderStatusBar()
	}
	imgui.End()
}

// handleShortcuts processes global keyboard shortcuts.
func (app *App) handleShortcuts() {
	if imgui.IsAnyItemActive() {
		return
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyRightArrow)) {
		app.session.NextAsset()
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyLeftArrow)) {
		app.session.PrevAsset()
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyO)) {
		app.session.ToggleOverlay()
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyM)) && app.ambience != nil {
		app.muted = !app.muted
		app.session.SetMuted(app.muted)
	}
	if imgui.IsKeyChordPressed(imgui.KeyChord(imgui.KeyF12)) {
		app.snapshotRequested = true
	}
}

// renderCatalogPanel lists the catalog entries.
func (app *App) renderCatalogPanel() {
	entries := app.session.Entries()
	if len(entries) == 0 {
		imgui.TextDisabled("No products loaded")
		imgui.Spacing()
		imgui.TextWrapped("Use File > Open Model... to view a local file.")
		return
	}

	for i, entry := range entries {
		selected := i == app.session.ActiveIndex()
		label := fmt.Sprintf("%s##entry%d", entry.Name, i)
		if imgui.SelectableBoolV(label, selected, 0, imgui.NewVec2(0, 0)) && !selected {
			app.session.LoadAsset(i)
		}
		if imgui.IsItemHovered() && entry.URL != "" {
			imgui.SetTooltip(entry.URL)
		}
	}
}

// renderViewport draws the stage into the center panel and forwards
// mouse input to the orbit camera.
func (app *App) renderViewport() {
	avail := imgui.ContentRegionAvail()
	if avail.X < 16 || avail.Y < 16 {
		return
	}
	app.stage.Resize(int32(avail.X), int32(avail.Y))

	originX := imgui.CursorPosX()
	originY := imgui.CursorPosY()

	textureID := app.stage.Render(app.session.Camera)

	if app.snapshotRequested {
		app.snapshotRequested = false
		app.captureSnapshot()
	}

	// Flip V: the framebuffer's row order is bottom-up.
	texRef := imgui.NewTextureRefTextureID(imgui.TextureID(textureID))
	imgui.ImageWithBgV(
		*texRef,
		imgui.NewVec2(avail.X, avail.Y),
		imgui.NewVec2(0, 1),
		imgui.NewVec2(1, 0),
		imgui.NewVec4(0, 0, 0, 1),
		imgui.NewVec4(1, 1, 1, 1),
	)

	if imgui.IsItemHovered() {
		mousePos := imgui.MousePos()
		if imgui.IsMouseDragging(imgui.MouseButtonLeft) {
			app.session.Camera.HandleDrag(
				mousePos.X-app.lastMousePos.X,
				mousePos.Y-app.lastMousePos.Y,
			)
		}
		if imgui.IsMouseDragging(imgui.MouseButtonRight) {
			app.session.Camera.HandlePan(
				mousePos.X-app.lastMousePos.X,
				mousePos.Y-app.lastMousePos.Y,
			)
		}
		app.lastMousePos = mousePos

		if wheel := imgui.CurrentIO().MouseWheel(); wheel != 0 {
			app.session.Camera.HandleZoom(wheel)
		}
	}

	app.renderMeasurementLabels(originX, originY, avail)

	if app.session.Loading() {
		imgui.SetCursorPosX(originX + 10)
		imgui.SetCursorPosY(originY + 10)
		imgui.TextColored(imgui.NewVec4(0.8, 0.8, 0.8, 1), "Loading...")
	}
}

// captureSnapshot reads back the stage color texture and writes a PNG.
func (app *App) captureSnapshot() {
	width, height := app.stage.Size()
	pixels := make([]byte, int(width)*int(height)*4)

	gl.BindTexture(gl.TEXTURE_2D, app.stage.ColorTexture())
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)

	path, err := app.snapshots.WritePixels(pixels, int(width), int(height))
	if err != nil {
		logger.Warn("snapshot failed", zap.Error(err))
		return
	}
	logger.Info("snapshot saved", zap.String("path", path))
}

// renderMeasurementLabels anchors the dimension texts at their
// projected overlay positions.
func (app *App) renderMeasurementLabels(originX, originY float32, avail imgui.Vec2) {
	overlay := app.session.Overlay()
	if overlay == nil || !overlay.Visible {
		return
	}

	for i := range overlay.Annotations {
		a := &overlay.Annotations[i]
		x, y, ok := app.stage.ProjectToScreen(a.LabelAnchor)
		if !ok || x < 0 || y < 0 || x > avail.X || y > avail.Y {
			continue
		}
		imgui.SetCursorPosX(originX + x)
		imgui.SetCursorPosY(originY + y)
		imgui.TextColored(labelColor, a.LabelText)
	}
}

// renderControlsPanel draws weather, unit, and overlay controls plus
// the resolved product dimensions.
func (app *App) renderControlsPanel() {
	imgui.Text("Weather")
	for _, kind := range weather.Kinds {
		selected := app.session.Weather() == kind
		if imgui.SelectableBoolV(kind.String(), selected, 0, imgui.NewVec2(0, 0)) && !selected {
			app.session.SetWeather(kind)
		}
	}

	imgui.Separator()
	imgui.Text("Display unit")
	app.renderUnitRow(app.session.DisplayUnit(), "disp", app.session.SetDisplayUnit)

	bundle := app.session.Bundle()
	if bundle != nil && !bundle.Dimensions.Authoritative {
		imgui.Spacing()
		imgui.Text("Model unit")
		app.renderUnitRow(app.session.AssumedUnit(), "assumed", app.session.SetAssumedUnit)
		if imgui.IsItemHovered() {
			imgui.SetTooltip("The asset does not declare its units; dimensions are inferred")
		}
	}

	imgui.Separator()

	showOverlay := app.session.OverlayVisible()
	if imgui.Checkbox("Dimensions", &showOverlay) {
		app.session.SetOverlayVisible(showOverlay)
	}
	if imgui.Checkbox("Bounds", &app.showBounds) {
		app.session.SetBoundsVisible(app.showBounds)
	}
	if app.ambience != nil {
		if imgui.Checkbox("Mute ambience", &app.muted) {
			app.session.SetMuted(app.muted)
		}
	}

	if bundle != nil {
		imgui.Separator()
		imgui.Text("Product")
		imgui.TextWrapped(bundle.Entry.Name)
		imgui.Spacing()

		d := bundle.Dimensions
		u := app.session.DisplayUnit()
		imgui.Text(fmt.Sprintf("W: %s", measure.Format(d.WidthMM, u)))
		imgui.Text(fmt.Sprintf("H: %s", measure.Format(d.HeightMM, u)))
		imgui.Text(fmt.Sprintf("T: %s", measure.Format(d.ThicknessMM, u)))
		if d.Authoritative {
			imgui.TextDisabled("from catalog")
		} else {
			imgui.TextDisabled("inferred from geometry")
		}
	}

	imgui.Separator()
	if imgui.Button("Prev") {
		app.session.PrevAsset()
	}
	imgui.SameLine()
	if imgui.Button("Next") {
		app.session.NextAsset()
	}
}

// renderUnitRow draws the three unit choices on one line.
func (app *App) renderUnitRow(current measure.Unit, id string, set func(measure.Unit)) {
	for i, u := range []measure.Unit{measure.Millimeter, measure.Centimeter, measure.Meter} {
		if i > 0 {
			imgui.SameLine()
		}
		label := fmt.Sprintf("%s##%s", string(u), id)
		if imgui.SelectableBoolV(label, current == u, 0, imgui.NewVec2(36, 0)) && current != u {
			set(u)
		}
	}
}

// renderStatusBar shows tier, fps, and the active selection.
func (app *App) renderStatusBar() {
	status := fmt.Sprintf("tier: %s | %.0f fps", app.quality.Tier.String(), app.frameTimer.fps)
	if bundle := app.session.Bundle(); bundle != nil {
		status += " | " + bundle.Entry.Name
	}
	if app.session.Loading() {
		status += " | loading..."
	}
	imgui.Text(status)
}
