// Package report joins the pair file with the code-blocks file, expanding
// sequence ids into human-readable file/line CSV rows, and renders the run
// summary.
package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/shoei03/nilgo/pkg/models"
	"github.com/shoei03/nilgo/pkg/stats"
)

// LoadBlocks reads the code-blocks file. Record order equals id order, so
// the returned slice is indexed by sequence id.
func LoadBlocks(path string) ([]models.CodeBlock, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []models.CodeBlock
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		block, err := parseBlock(line)
		if err != nil {
			return nil, fmt.Errorf("code-blocks line %d: %w", len(blocks)+1, err)
		}
		blocks = append(blocks, block)
	}
	return blocks, sc.Err()
}

func parseBlock(line string) (models.CodeBlock, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return models.CodeBlock{}, fmt.Errorf("want at least 3 fields, got %d", len(fields))
	}
	start, err := strconv.Atoi(fields[1])
	if err != nil {
		return models.CodeBlock{}, err
	}
	end, err := strconv.Atoi(fields[2])
	if err != nil {
		return models.CodeBlock{}, err
	}
	block := models.CodeBlock{FilePath: fields[0], StartLine: start, EndLine: end}
	if len(fields) >= 8 {
		block.MethodName = fields[3]
		block.ReturnType = fields[4]
		if params := strings.Trim(fields[5], "[]"); params != "" {
			block.Params = strings.Split(params, " ")
		}
		block.CommitHash = fields[6]
		block.TokenHash = fields[7]
	}
	return block, nil
}

// LoadPairs reads the pair file.
func LoadPairs(path string) ([]models.ClonePair, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pairs []models.ClonePair
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if line == "" {
			continue
		}
		pair, err := parsePair(line)
		if err != nil {
			return nil, fmt.Errorf("pair line %d: %w", len(pairs)+1, err)
		}
		pairs = append(pairs, pair)
	}
	return pairs, sc.Err()
}

func parsePair(line string) (models.ClonePair, error) {
	fields := strings.Split(line, ",")
	if len(fields) != 3 && len(fields) != 4 {
		return models.ClonePair{}, fmt.Errorf("want 3 or 4 fields, got %d", len(fields))
	}
	values := make([]int, len(fields))
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return models.ClonePair{}, err
		}
		values[i] = v
	}
	pair := models.ClonePair{ID1: values[0], ID2: values[1], NGramSim: values[2]}
	if len(values) == 4 {
		pair.LCSSim = values[3]
		pair.HasLCS = true
	}
	return pair, nil
}

// Expand writes one CSV row per pair with the ids resolved through the
// code-blocks records:
// fileA,startA,endA,fileB,startB,endB,ngramSim[,lcsSim].
func Expand(pairs []models.ClonePair, blocks []models.CodeBlock, w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, p := range pairs {
		if p.ID1 < 0 || p.ID1 >= len(blocks) || p.ID2 < 0 || p.ID2 >= len(blocks) {
			return fmt.Errorf("pair (%d,%d) references unknown code block", p.ID1, p.ID2)
		}
		a, b := blocks[p.ID1], blocks[p.ID2]
		if _, err := fmt.Fprintf(bw, "%s,%d,%d,%s,%d,%d,%d",
			a.FilePath, a.StartLine, a.EndLine, b.FilePath, b.StartLine, b.EndLine, p.NGramSim); err != nil {
			return err
		}
		if p.HasLCS {
			if _, err := fmt.Fprintf(bw, ",%d", p.LCSSim); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintln(bw); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Summary renders the run-summary table: pair counts and the distribution
// of N-gram similarities over the emitted pairs.
func Summary(w io.Writer, pairs []models.ClonePair) {
	fastPath := 0
	sims := make([]float64, 0, len(pairs))
	for _, p := range pairs {
		if !p.HasLCS {
			fastPath++
		}
		sims = append(sims, float64(p.NGramSim))
	}
	sort.Float64s(sims)

	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
			},
			Row: tw.CellConfig{
				Alignment: tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.Border{Left: tw.Off, Right: tw.Off, Top: tw.Off, Bottom: tw.Off},
			Settings: tw.Settings{
				Separators: tw.Separators{BetweenColumns: tw.Off},
			},
		}),
	)
	table.Header([]string{"Metric", "Value"})
	table.Append([]string{"Clone pairs", strconv.Itoa(len(pairs))})
	table.Append([]string{"Fast-path accepts", strconv.Itoa(fastPath)})
	table.Append([]string{"LCS-verified accepts", strconv.Itoa(len(pairs) - fastPath)})
	table.Append([]string{"Avg n-gram similarity", fmt.Sprintf("%.0f%%", stats.Mean(sims))})
	table.Append([]string{"P50 n-gram similarity", fmt.Sprintf("%.0f%%", stats.Percentile(sims, 50))})
	table.Append([]string{"P95 n-gram similarity", fmt.Sprintf("%.0f%%", stats.Percentile(sims, 95))})
	table.Render()
}
