// Package tui draws the receiver dashboard.
package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/iottrends-tech/dvb-s2-SDR/config"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/navidys/tvxwidgets"
	"github.com/rivo/tview"
)

var LogOut *tview.TextView

func gauge(label string, warn, crit float64) *tvxwidgets.UtilModeGauge {
	g := tvxwidgets.NewUtilModeGauge()
	g.SetLabel(label)
	g.SetLabelColor(tcell.ColorLightSkyBlue)
	g.SetWarnPercentage(warn)
	g.SetCritPercentage(crit)
	g.SetEmptyColor(tcell.ColorBlack)
	g.SetBorder(false)
	return g
}

// StartUI runs the dashboard until ctx is done or the user quits. cancel is
// called when the UI exits on its own.
func StartUI(ctx context.Context, cancel context.CancelFunc, decoder *datalink.Decoder, demodulator *demod.Demodulator, tuiConf config.TuiConf) error {
	app := tview.NewApplication()

	LogOut = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	syncData := &SyncTableData{modcod: decoder.Profile.String()}
	frameData := &FrameTableData{}
	syncTable := tview.NewTable().SetContent(syncData)
	frameTable := tview.NewTable().SetContent(frameData)

	signalPlot := tvxwidgets.NewPlot()
	signalPlot.SetLineColor([]tcell.Color{tcell.ColorLightSkyBlue})
	signalPlot.SetMarker(tvxwidgets.PlotMarkerBraille)

	signalGauge := gauge("Signal Quality:              ", 99, 100)
	ldpcGauge := gauge("LDPC Iteration Load:         ", tuiConf.LdpcWarnPct, tuiConf.LdpcCritPct)
	lossGauge := gauge("Frame Loss:                  ", tuiConf.FrameWarnPct, tuiConf.FrameCritPct)

	gaugeBox := tview.NewFlex()
	gaugeBox.SetDirection(tview.FlexRow)
	gaugeBox.AddItem(signalGauge, 0, 1, false)
	gaugeBox.AddItem(ldpcGauge, 0, 1, false)
	gaugeBox.AddItem(lossGauge, 0, 1, false)
	gaugeBox.SetTitle("Signal Stats")
	gaugeBox.SetBorder(true)

	LogOut.SetChangedFunc(func() {
		LogOut.ScrollToEnd()
		app.Draw()
	})
	LogOut.SetBorder(true).SetTitle("Log Output")
	if tuiConf.EnableLogOutput {
		log.SetOutput(LogOut)
	}

	syncTable.SetSelectable(false, false).SetBorder(true).SetTitle("Synchronizer")
	frameTable.SetSelectable(false, false).SetBorder(true).SetTitle("Decoder Status")
	signalPlot.SetBorder(true)
	signalPlot.SetTitle("Spectrum")

	page := tview.NewFlex().SetDirection(tview.FlexColumn)

	leftCol := tview.NewFlex().SetDirection(tview.FlexRow)
	leftCol.AddItem(syncTable, 0, 1, false)
	leftCol.AddItem(frameTable, 0, 1, false)

	rightCol := tview.NewFlex().SetDirection(tview.FlexRow)
	rightCol.AddItem(gaugeBox, 0, 2, false)
	if demodulator.DoFFT {
		rightCol.AddItem(signalPlot, 0, 3, false)
	}
	if tuiConf.EnableLogOutput {
		rightCol.AddItem(LogOut, 0, 2, false)
	}

	page.AddItem(leftCol, 0, 2, false)
	page.AddItem(rightCol, 0, 5, false)

	go func() {
		ticker := time.NewTicker(time.Duration(tuiConf.RefreshMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				app.Stop()
				return
			case <-ticker.C:
			}
			dm := demodulator.Stats()
			dl := decoder.Stats()
			bins := demodulator.Spectrum()
			app.QueueUpdateDraw(func() {
				syncData.status = dm
				if dm.Sync.NoiseVar > 0 {
					syncData.esn0 = demod.EsN0(dm.Sync.NoiseVar)
				}
				frameData.stats = dl

				signalGauge.SetValue(float64(dl.SigQuality))
				ldpcGauge.SetValue(100 - float64(dl.SigQuality))
				if dl.TotalFramesProcessed > 0 {
					lost := dl.TotalFramesProcessed - dl.FramesOK
					lossGauge.SetValue(100 * float64(lost) / float64(dl.TotalFramesProcessed))
				}
				if len(bins) > 0 {
					signalPlot.SetData([][]float64{bins})
				}
			})
		}
	}()

	err := app.SetRoot(page, true).EnableMouse(true).Run()
	cancel()
	return err
}
