package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"jobby-backend/internal/domain"
	"jobby-backend/internal/form"
	"jobby-backend/pkg/apiclient"
	"jobby-backend/pkg/query"
	"jobby-backend/pkg/validation"
)

var newAPIClient = func() *apiclient.Client {
	return apiclient.New(apiURL, apiToken)
}

// openPage loads the profile page forms against the API.
func openPage(ctx context.Context) (*form.Page, error) {
	if err := requireToken(); err != nil {
		return nil, err
	}
	client := newAPIClient()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	page := form.NewPage(query.NewClient(log), client, client, toastNotifier{}, log)
	if err := page.Load(ctx); err != nil {
		page.Close()
		return nil, err
	}
	if page.Profile.ProfileID() == 0 {
		page.Close()
		return nil, errors.New("you have no candidate profile yet")
	}
	return page, nil
}

// --- show ---

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show your profile",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireToken(); err != nil {
			return err
		}
		p, err := newAPIClient().CurrentProfile(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if p == nil {
			fmt.Fprintln(out, "No candidate profile yet.")
			return nil
		}
		writeProfile(out, p)
		return nil
	},
}

func writeProfile(w io.Writer, p *domain.CandidateProfile) {
	fmt.Fprintln(w, colorize(colorBold, "My Profile"))
	if p.IsComplete {
		printStatus(w, "Status", colorize(colorGreen, "complete"))
	} else {
		printStatus(w, "Status", colorize(colorYellow, "not complete")+" ("+domain.ProfileCompleteHint+")")
	}
	printStatus(w, "Full name", p.FullName)
	printStatus(w, "Job title", deref(p.JobTitle))
	printStatus(w, "Email", p.Email)
	printStatus(w, "Phone", deref(p.Phone))
	printStatus(w, "Website", deref(p.Website))
	printStatus(w, "Experience", deref(p.ExperienceInYears))
	printStatus(w, "Age", deref(p.Age))
	printStatus(w, "Skills", strings.Join(p.Skills, ", "))
	printStatus(w, "Bio", deref(p.Bio))
	printStatus(w, "Listed", fmt.Sprintf("%t", p.ShowInListings))
	image := domain.PlaceholderImage
	if p.Image != nil && *p.Image != "" {
		image = *p.Image
	}
	printStatus(w, "Image", image)
	printStatus(w, "City", deref(p.City))
	printStatus(w, "State", deref(p.State))
	printStatus(w, "Country", deref(p.Country))
	printStatus(w, "Pincode", deref(p.Pincode))
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

// --- update ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile details",
	Long: `Update profile details. Only the flags you pass are changed.

Examples:
  profilectl update --full-name "Ada Lovelace" --job-title Engineer
  profilectl update --skills "go,postgres,redis" --show-in-listings`,
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := openPage(cmd.Context())
		if err != nil {
			return err
		}
		defer page.Close()

		flags := cmd.Flags()
		str := func(name string) (string, bool) {
			v, _ := flags.GetString(name)
			return v, flags.Changed(name)
		}
		page.Profile.Update(func(v *form.ProfileValues) {
			if s, ok := str("full-name"); ok {
				v.FullName = s
			}
			if s, ok := str("job-title"); ok {
				v.JobTitle = s
			}
			if s, ok := str("phone"); ok {
				v.Phone = s
			}
			if s, ok := str("email"); ok {
				v.Email = s
			}
			if s, ok := str("website"); ok {
				v.Website = s
			}
			if s, ok := str("experience"); ok {
				v.ExperienceInYears = s
			}
			if s, ok := str("age"); ok {
				v.Age = s
			}
			if s, ok := str("bio"); ok {
				v.Bio = s
			}
			if flags.Changed("show-in-listings") {
				v.ShowInListings, _ = flags.GetBool("show-in-listings")
			}
		})
		if s, ok := str("skills"); ok {
			page.Profile.SetSkills(splitTags(s))
		}

		return reportSubmit(page.Profile.Submit(cmd.Context()))
	},
}

func init() {
	f := updateCmd.Flags()
	f.String("full-name", "", "full name")
	f.String("job-title", "", "job title")
	f.String("phone", "", "phone number")
	f.String("email", "", "email address")
	f.String("website", "", "website URL")
	f.String("experience", "", "experience in years")
	f.String("age", "", "age")
	f.String("skills", "", "comma-separated skills")
	f.String("bio", "", "short bio")
	f.Bool("show-in-listings", false, "allow in search and listings")
}

// --- contact ---

var contactCmd = &cobra.Command{
	Use:   "contact",
	Short: "Update your contact address",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := openPage(cmd.Context())
		if err != nil {
			return err
		}
		defer page.Close()

		flags := cmd.Flags()
		setters := map[string]func(string){
			"city":    page.Contact.SetCity,
			"state":   page.Contact.SetState,
			"country": page.Contact.SetCountry,
			"pincode": page.Contact.SetPincode,
		}
		for name, set := range setters {
			if flags.Changed(name) {
				v, _ := flags.GetString(name)
				set(v)
			}
		}

		return reportSubmit(page.Contact.Submit(cmd.Context()))
	},
}

func init() {
	f := contactCmd.Flags()
	f.String("city", "", "city")
	f.String("state", "", "state")
	f.String("country", "", "country")
	f.String("pincode", "", "postal code")
}

// --- image ---

var imageCmd = &cobra.Command{
	Use:   "image",
	Short: "Manage your profile image",
}

var imageUploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Upload and set a new profile image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening image: %w", err)
		}
		defer f.Close()

		page, err := openPage(cmd.Context())
		if err != nil {
			return err
		}
		defer page.Close()

		if err := page.Profile.UploadImage(cmd.Context(), args[0], f); err != nil {
			return errReported
		}
		printStatus(cmd.OutOrStdout(), "Image", page.Profile.ImageURL())
		return nil
	},
}

var imageRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Remove your profile image",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, err := openPage(cmd.Context())
		if err != nil {
			return err
		}
		defer page.Close()

		if err := page.Profile.RemoveImage(cmd.Context()); err != nil {
			return errReported
		}
		return nil
	},
}

// --- password ---

var passwordCmd = &cobra.Command{
	Use:   "password",
	Short: "Change your password (not available yet)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return form.PasswordForm{}.Submit(cmd.Context())
	},
}

// errReported marks failures the notifier already printed.
var errReported = errors.New("request failed")

func reportSubmit(err error) error {
	var fe validation.FieldErrors
	switch {
	case err == nil:
		return nil
	case errors.Is(err, form.ErrNotDirty):
		printWarning("Nothing to save")
		return nil
	case errors.As(err, &fe):
		keys := make([]string, 0, len(fe))
		for k := range fe {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			printError("%s", fe[k])
		}
		return errors.New("validation failed")
	default:
		return errReported
	}
}

func splitTags(s string) []string {
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
