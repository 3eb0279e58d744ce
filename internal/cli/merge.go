package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/codalotl/linkmerge/internal/diff"
	"github.com/codalotl/linkmerge/internal/linkedmerge"
)

type mergeFlags struct {
	inputFlags
	out    string
	asJSON bool
}

func newMergeCommand(g *globalFlags) *cobra.Command {
	f := &mergeFlags{}
	cmd := &cobra.Command{
		Use:   "merge --original FILE [flags] COPY...",
		Short: "Merge linked copies of a file into one",
		Long: `Merge linked copies of a file into one.

Each COPY is an edited version of the --original file. Copies are named after their parent directory (the project) in conflict comments.
The merged text is written to stdout or --out. Conflicts are not errors: the exit code is 0 whenever the merge completes.

Examples:
  linkmerge merge --original base/Util.cs web/Util.cs api/Util.cs
  linkmerge merge --original base/mod.vb --style "line:'" --out merged.vb a/mod.vb b/mod.vb
  linkmerge merge --original base/x.py --json a/x.py b/x.py | jq '.conflicts'`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := prepareJob(cmd, g, &f.inputFlags, args)
			if err != nil {
				return err
			}
			res, err := j.run(cmd.Context())
			if err != nil {
				return err
			}

			data := []byte(res.Text)
			if f.asJSON {
				data, err = json.MarshalIndent(newJSONResult(j, res), "", "  ")
				if err != nil {
					return failed(err)
				}
				data = append(data, '\n')
			}
			return writeOutput(cmd.OutOrStdout(), f.out, data)
		},
	}
	addInputFlags(cmd, &f.inputFlags)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the result to `FILE` instead of stdout")
	cmd.Flags().BoolVar(&f.asJSON, "json", false, "write {text, conflicts, stats} as JSON instead of the merged text")
	return cmd
}

type jsonResult struct {
	Text      string            `json:"text"`
	Conflicts []jsonConflict    `json:"conflicts"`
	Stats     linkedmerge.Stats `json:"stats"`
}

type jsonSpan struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

type jsonConflict struct {
	Span        jsonSpan    `json:"span"`
	StartLine   int         `json:"start_line"`
	EndLine     int         `json:"end_line"`
	CommentSpan jsonSpan    `json:"comment_span"`
	Winner      string      `json:"winner"`
	Entries     []jsonEntry `json:"entries"`
}

type jsonEntry struct {
	Project string `json:"project"`
	Path    string `json:"path"`
	Reason  string `json:"reason"`
	Before  string `json:"before,omitempty"`
	After   string `json:"after,omitempty"`
}

func newJSONResult(j *job, res *linkedmerge.Result) jsonResult {
	out := jsonResult{Text: res.Text, Conflicts: []jsonConflict{}, Stats: res.Stats}
	for _, c := range res.Conflicts {
		start, end := lineRange(j.original, c.Span)
		jc := jsonConflict{
			Span:        toJSONSpan(c.Span),
			StartLine:   start,
			EndLine:     end,
			CommentSpan: toJSONSpan(c.CommentSpan),
			Winner:      j.labels[c.Winner],
			Entries:     []jsonEntry{},
		}
		for _, e := range c.Entries {
			jc.Entries = append(jc.Entries, jsonEntry{
				Project: e.Label,
				Path:    j.paths[e.Source],
				Reason:  e.Reason.String(),
				Before:  e.Before,
				After:   e.After,
			})
		}
		out.Conflicts = append(out.Conflicts, jc)
	}
	return out
}

func toJSONSpan(s diff.TextSpan) jsonSpan {
	return jsonSpan{Start: s.Start, End: s.End()}
}
