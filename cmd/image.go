package cmd

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"

	"github.com/twistql/twistql/config"
	"github.com/twistql/twistql/query"
	"github.com/twistql/twistql/scan"
	"github.com/twistql/twistql/source"
)

var (
	fieldsFlag   string
	sortByFlag   string
	fromFileFlag string
)

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Retrieve information about scanned images",
}

var searchCmd = &cobra.Command{
	Use:   "search <searchspec> <view>",
	Short: "Query a remote console",
	Long: `Query scan reports on a remote console. The view is one of the
package categories (binary, gem, jar, nodejs, package, python, windows),
"cves" for the vulnerability list, or "list" to show which categories an
image has.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, err := newRemote(args[0])
		if err != nil {
			return err
		}
		return runQuery(remote, args[0], args[1])
	},
}

var fileCmd = &cobra.Command{
	Use:   "file <filename> <searchspec> <view>",
	Short: "Query a saved snapshot",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runQuery(source.NewFile(args[0]), args[1], args[2])
	},
}

var saveCmd = &cobra.Command{
	Use:   "save <searchspec> <filename>",
	Short: "Save a console payload as a local snapshot",
	Long: `Fetch scan reports from a remote console and write them to a local
snapshot for later querying with "image file". A filename ending in .gz
is compressed.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		remote, err := newRemote(args[0])
		if err != nil {
			return err
		}
		payload, err := remote.Images()
		if err != nil {
			return err
		}
		return source.Save(afero.NewOsFs(), args[1], payload)
	},
}

var listCmd = &cobra.Command{
	Use:   "list [substring]",
	Short: "List images whose digest or tags contain a substring",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := ""
		if len(args) > 0 {
			spec = args[0]
		}

		var provider source.Provider
		if fromFileFlag != "" {
			provider = source.NewFile(fromFileFlag)
		} else {
			remote, err := newRemote(spec)
			if err != nil {
				return err
			}
			provider = remote
		}

		engine, err := newEngine(provider)
		if err != nil {
			return err
		}
		summaries := engine.ListImages(spec)
		if len(summaries) == 0 {
			fmt.Fprintln(os.Stderr, "no results")
			return nil
		}
		return renderImages(os.Stdout, summaries)
	},
}

func newRemote(spec string) (*source.Remote, error) {
	cfg, err := config.Load(afero.NewOsFs(), configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	baseURL, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, xerrors.Errorf("invalid console URL %s: %w", cfg.URL, err)
	}
	return source.NewRemote(baseURL, cfg.Username, cfg.Password, source.WithSearch(spec)), nil
}

func newEngine(provider source.Provider) (*query.Engine, error) {
	payload, err := provider.Images()
	if err != nil {
		return nil, err
	}
	catalog, err := scan.NewCatalog(payload)
	if err != nil {
		return nil, err
	}
	return query.NewEngine(catalog), nil
}

func runQuery(provider source.Provider, spec, selector string) error {
	engine, err := newEngine(provider)
	if err != nil {
		return err
	}

	var fields []string
	if fieldsFlag != "" {
		fields = strings.Split(fieldsFlag, ",")
	}

	records, err := engine.Query(spec, selector, fields, sortByFlag)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		fmt.Fprintln(os.Stderr, "no results")
		return nil
	}
	return renderRecords(os.Stdout, records)
}

func init() {
	for _, c := range []*cobra.Command{searchCmd, fileCmd} {
		c.Flags().StringVar(&fieldsFlag, "fields", "", "comma-separated fields to display")
		c.Flags().StringVar(&sortByFlag, "sort-by", "", "field to sort by (ascending)")
	}
	listCmd.Flags().StringVar(&fromFileFlag, "from-file", "", "list images from a snapshot instead of the console")
	imageCmd.AddCommand(searchCmd, fileCmd, saveCmd, listCmd)
}
