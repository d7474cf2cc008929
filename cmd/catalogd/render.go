package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"modelcatalog/internal/common/fsutil"
	"modelcatalog/internal/config"
	"modelcatalog/internal/manifest"
	"modelcatalog/pkg/types"
)

func newRenderCmd(opts *rootOptions) *cobra.Command {
	var (
		file   string
		format string
		output string
		commit bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render an InferenceService manifest from a deployment request file",
		Example: "  catalogd render -f uplift.yaml\n" +
			"  catalogd render -f request.json -o json\n" +
			"  cat uplift.yaml | catalogd render -f - --commit",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "yaml" && output != "json" {
				return fmt.Errorf("unsupported output %q: use yaml or json", output)
			}
			req, err := readRequest(file, format)
			if err != nil {
				return err
			}
			cfg, err := opts.load(false)
			if err != nil {
				return err
			}
			mgr, err := buildManager(cfg, newLogger(cfg, cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			var resp types.DeploymentResponse
			if commit {
				if req.Commit == nil {
					req.Commit = &types.CommitOptions{}
				}
				resp, err = mgr.Deploy(cmd.Context(), req)
			} else {
				resp, err = mgr.Render(cmd.Context(), req)
			}
			if err != nil {
				return err
			}
			out := []byte(resp.YAML)
			if output == "json" {
				doc, ok := resp.Manifest.(manifest.Resource)
				if !ok {
					return fmt.Errorf("unexpected manifest type %T", resp.Manifest)
				}
				if out, err = manifest.ToJSON(doc); err != nil {
					return err
				}
				out = append(out, '\n')
			}
			if _, err := cmd.OutOrStdout().Write(out); err != nil {
				return err
			}
			if resp.Commit != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "committed %s to %s@%s\n", resp.Commit.FilePath, resp.Commit.ProjectID, resp.Commit.Branch)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Deployment request (.yaml or .json); - reads stdin")
	cmd.Flags().StringVar(&format, "format", "", "Request format when it cannot be inferred from the file name (yaml|json)")
	cmd.Flags().StringVarP(&output, "output", "o", "yaml", "Output format: yaml|json")
	cmd.Flags().BoolVar(&commit, "commit", false, "Commit the manifest using the configured GitLab defaults")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readRequest(file, format string) (types.DeploymentRequest, error) {
	var req types.DeploymentRequest
	b, err := fsutil.ReadFile(file)
	if err != nil {
		return req, err
	}
	ext := filepath.Ext(file)
	if format != "" {
		ext = "." + strings.TrimPrefix(strings.ToLower(format), ".")
	} else if file == "-" {
		ext = ".yaml"
	}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml", ".json":
	default:
		return req, fmt.Errorf("unsupported request format %q: use yaml or json", ext)
	}
	if err := config.Decode(ext, b, &req); err != nil {
		return req, fmt.Errorf("read %s: %w", file, err)
	}
	return req, nil
}
