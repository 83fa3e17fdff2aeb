package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/wanmail/selenide"
)

// startDriver opens the session checks run in. Tests replace it to run
// against a fake session.
var startDriver = selenide.Start

// elementFlags are the flags asserting on a single element.
var elementFlags = []string{"text", "exact-text", "match-text", "value", "attr", "visible", "hidden", "absent", "enabled"}

func checkCmd() *cobra.Command {
	var (
		pageURL  string
		selector string
		xpath    string
		size     int
	)
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Open a page and assert conditions on one element or on a collection",
		Example: `  selenide check --url http://localhost:8080 --selector h2 --text "Dropdown list"
  selenide check --url http://localhost:8080 --xpath "//li" --size 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (selector == "") == (xpath == "") {
				return errors.New("exactly one of --selector and --xpath is required")
			}
			by := selenide.ByCSS(selector)
			if xpath != "" {
				by = selenide.ByXPath(xpath)
			}
			checkSize := cmd.Flags().Changed("size")
			if checkSize {
				for _, name := range elementFlags {
					if cmd.Flags().Changed(name) {
						return fmt.Errorf("--size cannot be combined with --%s", name)
					}
				}
			}
			should, shouldNot, err := conditions(cmd.Flags())
			if err != nil {
				return err
			}
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			d, err := startDriver(cfg)
			if err != nil {
				return err
			}
			defer func() {
				if err := d.Quit(); err != nil {
					glog.Warningf("quit session: %v", err)
				}
			}()
			if err := d.Open(pageURL); err != nil {
				return err
			}

			if checkSize {
				all := d.FindAllBy(by)
				if err := all.ShouldHave(selenide.Size(size)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", all)
				return nil
			}
			el := d.FindBy(by)
			if err := el.Should(should...); err != nil {
				return err
			}
			if err := el.ShouldNot(shouldNot...); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok %s\n", el)
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&pageURL, "url", "", "page to open, absolute or relative to $SELENIDE_BASE_URL")
	flags.StringVar(&selector, "selector", "", "CSS selector of the element")
	flags.StringVar(&xpath, "xpath", "", "XPath of the element")
	flags.IntVar(&size, "size", 0, "assert the number of matching elements instead")
	flags.String("text", "", "element text should contain this, ignoring case")
	flags.String("exact-text", "", "element text should equal this, ignoring case")
	flags.String("match-text", "", "element text should match this regular expression")
	flags.String("value", "", "element value should contain this")
	flags.StringArray("attr", nil, "element should have this attribute, as name or name=value")
	flags.Bool("visible", false, "element should be visible")
	flags.Bool("hidden", false, "element should be hidden or absent")
	flags.Bool("absent", false, "element should not exist")
	flags.Bool("enabled", false, "element should be enabled")
	cmd.MarkFlagRequired("url")
	return cmd
}

// conditions builds the element conditions requested on the command line:
// those the element should meet and those it should not. With none
// requested the element only has to exist.
func conditions(flags *pflag.FlagSet) (should, shouldNot []selenide.Condition, err error) {
	str := func(name string, cond func(string) selenide.Condition) {
		if flags.Changed(name) {
			v, _ := flags.GetString(name)
			should = append(should, cond(v))
		}
	}
	str("text", selenide.Text)
	str("exact-text", selenide.ExactText)
	str("match-text", selenide.MatchText)
	str("value", selenide.Value)

	attrs, _ := flags.GetStringArray("attr")
	for _, a := range attrs {
		name, value, ok := strings.Cut(a, "=")
		if name == "" {
			return nil, nil, fmt.Errorf("invalid --attr %q", a)
		}
		if ok {
			should = append(should, selenide.AttributeValue(name, value))
		} else {
			should = append(should, selenide.Attribute(name))
		}
	}

	for _, b := range []struct {
		flag string
		cond selenide.Condition
	}{
		{"visible", selenide.Visible},
		{"hidden", selenide.Hidden},
		{"enabled", selenide.Enabled},
	} {
		if on, _ := flags.GetBool(b.flag); on {
			should = append(should, b.cond)
		}
	}
	if absent, _ := flags.GetBool("absent"); absent {
		shouldNot = append(shouldNot, selenide.Exist)
	}
	if len(should) == 0 && len(shouldNot) == 0 {
		should = append(should, selenide.Exist)
	}
	return should, shouldNot, nil
}
