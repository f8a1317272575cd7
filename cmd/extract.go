package cmd

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/homelibrary/bookworm/internal/models"
	"github.com/spf13/cobra"
)

func newExtractCmd() *cobra.Command {
	var cover, back string
	var info []string
	var coverText, infoText, backText string
	var lang string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the record of one book and print it as JSON",
		Example: `  # From photos
  bookworm extract --cover cover.jpg --info info1.jpg --info info2.jpg --back back.jpg

  # From text recognized elsewhere
  bookworm extract --info-text catalog.txt --cover-text cover.txt`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			svc, _, err := buildService(cfg)
			if err != nil {
				return err
			}

			var rec models.Record
			if coverText != "" || infoText != "" || backText != "" {
				req := models.TextRequest{}
				if req.CoverText, err = readText(coverText); err != nil {
					return err
				}
				if req.InfoText, err = readText(infoText); err != nil {
					return err
				}
				if req.BackText, err = readText(backText); err != nil {
					return err
				}
				rec, err = svc.ExtractText(cmd.Context(), req)
			} else {
				req := models.Request{Language: lang}
				if req.CoverImage, err = readImage(cover); err != nil {
					return err
				}
				for _, path := range info {
					b64, err := readImage(path)
					if err != nil {
						return err
					}
					req.InfoImages = append(req.InfoImages, b64)
				}
				if req.BackImage, err = readImage(back); err != nil {
					return err
				}
				rec, err = svc.Extract(cmd.Context(), req)
			}
			if err != nil {
				return err
			}

			encoder := json.NewEncoder(cmd.OutOrStdout())
			encoder.SetIndent("", "  ")
			return encoder.Encode(rec)
		},
	}

	cmd.Flags().StringVar(&cover, "cover", "", "Front cover image")
	cmd.Flags().StringArrayVar(&info, "info", nil, "Catalog or imprint page image (repeatable)")
	cmd.Flags().StringVar(&back, "back", "", "Back cover image")
	cmd.Flags().StringVar(&coverText, "cover-text", "", "File with recognized cover text")
	cmd.Flags().StringVar(&infoText, "info-text", "", "File with recognized catalog page text")
	cmd.Flags().StringVar(&backText, "back-text", "", "File with recognized back cover text")
	cmd.Flags().StringVar(&lang, "lang", "", "Recognition language for this book, e.g. rus")

	return cmd
}

func readImage(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return string(data), nil
}
