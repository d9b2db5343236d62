package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/NewsNowIndy/Dashboard/internal/document"
	"github.com/NewsNowIndy/Dashboard/internal/pdftext"
)

var (
	addSlug           string
	addTitle          string
	addNotes          string
	addReference      string
	addAgency         string
	addTranscript     string
	addTranscriptFile string
)

func newAddCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add projects, requests and documents",
		Long: `Store new records and index them immediately.

Uploads are indexed synchronously within the configured upload timeout and
OCR page cap. Indexing problems are logged and never fail the upload; run
"dashboard backfill" later to pick up anything that was missed.`,
	}

	cmd.AddCommand(newAddProjectCommand())
	cmd.AddCommand(newAddRequestCommand())
	cmd.AddCommand(newAddDocumentCommand())
	cmd.AddCommand(newAddAttachmentCommand())
	cmd.AddCommand(newAddMediaCommand())
	return cmd
}

func newAddProjectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "project <name>",
		Short:   "Create a project",
		Example: `  dashboard add project "Jail Deaths 2024"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), func(a *app) error {
				proj, err := a.ingest.AddProject(context.Background(), addSlug, args[0])
				if err != nil {
					return err
				}
				if !quiet {
					p.PrintSuccess(fmt.Sprintf("Created project %s (%s)", proj.Name, p.FormatID(proj.Slug)))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addSlug, "slug", "", "Project slug (derived from the name when empty)")
	return cmd
}

func newAddRequestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "request <project-slug>",
		Short:   "Record a FOIA request under a project",
		Example: `  dashboard add request jail-deaths-2024 --ref 24-1187 --agency "Marion County Sheriff"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), func(a *app) error {
				id, err := a.ingest.AddRequest(context.Background(), args[0], addReference, addAgency)
				if err != nil {
					return err
				}
				if quiet {
					fmt.Fprintln(cmd.OutOrStdout(), id)
					return nil
				}
				p.PrintSuccess(fmt.Sprintf("Created request %s", p.FormatID(strconv.FormatInt(id, 10))))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addReference, "ref", "", "Agency reference number")
	cmd.Flags().StringVar(&addAgency, "agency", "", "Agency the request was filed with")
	return cmd
}

func newAddDocumentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "document <project-slug> <file>",
		Short:   "Upload a project document",
		Example: `  dashboard add document jail-deaths-2024 autopsy.pdf --title "Autopsy report"`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(context.Background(), func(a *app) error {
				ref, err := a.ingest.AddProjectDocument(context.Background(), args[0], args[1], addTitle, addNotes)
				if err != nil {
					return err
				}
				reportUpload(a, ref)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addTitle, "title", "", "Document title (defaults to the filename)")
	cmd.Flags().StringVar(&addNotes, "notes", "", "Markdown notes shown on the document page")
	return cmd
}

func newAddAttachmentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "attachment <request-id> <file>",
		Short: "Upload an encrypted FOIA response attachment",
		Long: `Encrypt a FOIA response with FERNET_KEY and store it under the request.
The plaintext never touches the data directory.`,
		Example: `  dashboard add attachment 3 response.pdf`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			requestID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid request id %q", args[0])
			}
			return withApp(context.Background(), func(a *app) error {
				ref, err := a.ingest.AddAttachment(context.Background(), requestID, args[1])
				if err != nil {
					return err
				}
				reportUpload(a, ref)
				return nil
			})
		},
	}
}

func newAddMediaCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media <project-slug> [file]",
		Short: "Record a media item and its transcript",
		Example: `  dashboard add media council-budget --title "Budget hearing" --transcript-file hearing.txt
  dashboard add media council-budget hearing.mp3 --transcript "..."`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			transcript := addTranscript
			if addTranscriptFile != "" {
				data, err := os.ReadFile(addTranscriptFile)
				if err != nil {
					return err
				}
				transcript = string(data)
			}
			var path string
			if len(args) == 2 {
				path = args[1]
			}
			return withApp(context.Background(), func(a *app) error {
				ref, err := a.ingest.AddMedia(context.Background(), args[0], path, addTitle, transcript)
				if err != nil {
					return err
				}
				reportUpload(a, ref)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&addTitle, "title", "", "Media title")
	cmd.Flags().StringVar(&addTranscript, "transcript", "", "Transcript text")
	cmd.Flags().StringVar(&addTranscriptFile, "transcript-file", "", "Read the transcript from a file")
	cmd.MarkFlagsMutuallyExclusive("transcript", "transcript-file")
	return cmd
}

// reportUpload prints where ref landed and whether it made it into the index.
func reportUpload(a *app, ref document.Ref) {
	if quiet {
		return
	}
	p.PrintSuccess(fmt.Sprintf("Stored %s %s", ref.DisplayTitle(), p.FormatID(ref.Key())))
	if ref.StoredPath != "" {
		p.PrintListItem("Path", p.FormatPath(ref.StoredPath))
	}
	if ref.Kind == document.Project && document.IsPDF(ref.MimeType, ref.Filename) {
		if n, err := pdftext.PageCount(ref.StoredPath); err == nil {
			p.PrintListItem("Pages", fmt.Sprint(n))
		}
	}

	if !ref.Indexable() {
		p.PrintInfo("Not a PDF or transcript; stored without indexing")
		return
	}
	entry, err := a.store.IndexEntryFor(context.Background(), ref.ID, ref.Kind)
	switch {
	case err != nil:
		p.PrintWarning("Not indexed yet; run \"dashboard backfill\" to retry")
	case entry.Body == "":
		p.PrintWarning("Indexed with no extractable text")
	default:
		p.PrintListItem("Indexed", fmt.Sprintf("%d characters", len([]rune(entry.Body))))
	}
}
