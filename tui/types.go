package tui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/iottrends-tech/dvb-s2-SDR/datalink"
	"github.com/iottrends-tech/dvb-s2-SDR/demod"
	"github.com/rivo/tview"
)

type SyncTableData struct {
	tview.TableContentReadOnly
	status demod.Stats
	esn0   float64
	modcod string
}

type FrameTableData struct {
	tview.TableContentReadOnly
	stats datalink.Stats
}

func label(s string) *tview.TableCell {
	return tview.NewTableCell(s).SetTextColor(tcell.ColorLightSkyBlue)
}

func (s *SyncTableData) GetRowCount() int {
	return 8
}

func (s *SyncTableData) GetColumnCount() int {
	return 2
}

func (s *SyncTableData) GetCell(row, column int) *tview.TableCell {
	names := []string{"Modcod:", "Sync state:", "Header metric:", "Carrier offset:", "Timing offset:", "Es/N0:", "Sync losses:", "Overruns:"}
	if column == 0 {
		return label(names[row])
	}
	st := s.status.Sync
	switch row {
	case 0:
		return tview.NewTableCell(s.modcod)
	case 1:
		color := tcell.ColorGreen
		if st.State != demod.Locked {
			color = tcell.ColorRed
		}
		return tview.NewTableCell(st.State.String()).SetTextColor(color)
	case 2:
		return tview.NewTableCell(fmt.Sprintf("%.3f", st.Metric))
	case 3:
		return tview.NewTableCell(fmt.Sprintf("%.5f cyc/sym", st.Freq))
	case 4:
		return tview.NewTableCell(fmt.Sprintf("%.4f samp/sym", st.Omega))
	case 5:
		return tview.NewTableCell(fmt.Sprintf("%.1f dB", s.esn0))
	case 6:
		return tview.NewTableCell(fmt.Sprintf("%d", st.SyncLosses))
	case 7:
		return tview.NewTableCell(fmt.Sprintf("[red]%d", s.status.Overruns))
	}
	return tview.NewTableCell("ERROR")
}

func (f *FrameTableData) GetRowCount() int {
	return 8
}

func (f *FrameTableData) GetColumnCount() int {
	return 2
}

func (f *FrameTableData) GetCell(row, column int) *tview.TableCell {
	names := []string{"Frame lock:", "Frames processed:", "Frames OK:", "Uncorrectable:", "Bad BBHEADERs:", "LDPC failures:", "BCH corrections:", "TS CRC errors:"}
	if column == 0 {
		return label(names[row])
	}
	s := f.stats
	switch row {
	case 0:
		color := tcell.ColorGreen
		if !s.FrameLock {
			color = tcell.ColorRed
		}
		return tview.NewTableCell(fmt.Sprintf("%v", s.FrameLock)).SetTextColor(color)
	case 1:
		return tview.NewTableCell(fmt.Sprintf("%d", s.TotalFramesProcessed))
	case 2:
		return tview.NewTableCell(fmt.Sprintf("[green]%d", s.FramesOK))
	case 3:
		return tview.NewTableCell(fmt.Sprintf("[red]%d", s.Uncorrectable))
	case 4:
		return tview.NewTableCell(fmt.Sprintf("[red]%d", s.BadHeaders))
	case 5:
		return tview.NewTableCell(fmt.Sprintf("%d", s.LDPCFailures))
	case 6:
		return tview.NewTableCell(fmt.Sprintf("%d", s.BCHCorrections))
	case 7:
		return tview.NewTableCell(fmt.Sprintf("%d", s.CRCErrors))
	}
	return tview.NewTableCell("ERROR")
}
