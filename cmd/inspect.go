package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/jsphweid/perfdex/chord"
	"github.com/jsphweid/perfdex/constants"
	"github.com/jsphweid/perfdex/file"
	"github.com/jsphweid/perfdex/model"
	"github.com/jsphweid/perfdex/util"
)

var inspectPerformance bool

func init() {
	inspectCmd.Flags().BoolVarP(&inspectPerformance, "performance", "p", false, "read the file as a performance rather than a score")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Prints the chords of a score or performance",
	Long:  `Prints the chords of a score or performance, one line per onset.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if inspectPerformance {
			perf, err := file.LoadPerformance(args[0])
			cobra.CheckErr(err)
			inspectPerf(cmd.OutOrStdout(), perf)
			return
		}
		score, err := file.LoadScore(args[0])
		cobra.CheckErr(err)
		inspectScore(cmd.OutOrStdout(), filepath.Base(args[0]), score)
	},
}

func inspectScore(w io.Writer, name string, score *model.Score) {
	ppq := constants.GetPPQ()
	byDate := make(map[float64][]int)
	for _, n := range score.Notes {
		date := n.Onset.Pulses(ppq)
		byDate[date] = append(byDate[date], n.Pitch)
	}
	ts := "none"
	if score.TimeSignature != nil {
		ts = fmt.Sprintf("%d/%d", score.TimeSignature.Numerator, score.TimeSignature.Denominator)
	}
	fmt.Fprintf(w, "%s: %d notes, parts %v, time signature %s\n", name, len(score.Notes), score.Parts(), ts)
	for _, date := range util.GetKeys(byDate) {
		fmt.Fprintf(w, "%8.0f  %s\n", date, chord.CreateChordKey(byDate[date]))
	}
}

// inspectPerf groups notes starting within 30ms of the chord's first note.
func inspectPerf(w io.Writer, perf *model.Performance) {
	fmt.Fprintf(w, "%d notes, %d pedal events\n", len(perf.Notes), len(perf.Pedal))
	var pitches []int
	var start float64
	flush := func() {
		if len(pitches) > 0 {
			fmt.Fprintf(w, "%8.1fms  %s\n", start, chord.CreateChordKey(pitches))
		}
	}
	notes := append([]model.PerformedNote(nil), perf.Notes...)
	sort.SliceStable(notes, func(i, j int) bool {
		return notes[i].Onset < notes[j].Onset
	})
	for _, n := range notes {
		if len(pitches) == 0 || n.Onset-start > 30 {
			flush()
			pitches, start = nil, n.Onset
		}
		pitches = append(pitches, n.Pitch)
	}
	flush()
}
