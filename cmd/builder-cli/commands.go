package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"sort"
	"strconv"
	"strings"

	"go-page-builder/internal/componentmanager"
	"go-page-builder/internal/composer"
	"go-page-builder/internal/model"
	"go-page-builder/pkg/fsutils"
)

func (c *cli) handleCatalog() error {
	fmt.Fprintln(c.out, "Built-in components:")
	for _, d := range c.catalog.Builtins() {
		fmt.Fprintf(c.out, "- %s (%s) [%s]\n", d.Name, d.ID, d.Category)
	}
	customs := c.catalog.Customs()
	if len(customs) == 0 {
		fmt.Fprintln(c.out, "No custom components.")
		return nil
	}
	fmt.Fprintln(c.out, "Custom components:")
	for _, d := range customs {
		fmt.Fprintf(c.out, "- %s (%s) [%s] v%s\n", d.Name, d.ID, d.Category, d.Version)
	}
	return nil
}

func (c *cli) handleList(args []string) error {
	fs := c.newFlagSet("list")
	all := fs.Bool("all", false, "Include removed components")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	defs, err := c.manager.Store().ReadAll()
	if err != nil {
		return fmt.Errorf("listing components: %w", err)
	}
	sort.Slice(defs, func(i, j int) bool { return defs[i].CreatedAt.After(defs[j].CreatedAt) })

	shown := 0
	for _, d := range defs {
		if !d.IsActive && !*all {
			continue
		}
		if shown == 0 {
			fmt.Fprintln(c.out, "Found components:")
		}
		status := "Active"
		if !d.IsActive {
			status = "Removed"
		}
		fmt.Fprintf(c.out, "- ID: %s\n  Name: %s\n  Category: %s\n  Version: %s\n  Status: %s\n  Path: %s\n\n",
			d.ID, d.Name, d.Category, d.Version, status, d.Directory)
		shown++
	}
	if shown == 0 {
		fmt.Fprintln(c.out, "No components found.")
	}
	return nil
}

func (c *cli) handleCreate(args []string) error {
	fs := c.newFlagSet("create")
	name := fs.String("name", "", "Component name")
	category := fs.String("category", "", "Component category")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if strings.TrimSpace(*name) == "" {
		fmt.Fprintln(c.out, "Error: -name is required for create")
		return errUsage
	}

	def, err := c.manager.CreateComponent(strings.TrimSpace(*name), *category)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Successfully created component '%s' with ID '%s' in directory '%s'\n", def.Name, def.ID, def.Directory)
	return nil
}

// optionalString records whether a string flag was set at all, so an empty
// value can clear a field.
type optionalString struct {
	value string
	set   bool
}

func (o *optionalString) String() string { return o.value }
func (o *optionalString) Set(v string) error {
	o.value, o.set = v, true
	return nil
}

func (o *optionalString) ptr() *string {
	if !o.set {
		return nil
	}
	return &o.value
}

func (c *cli) handleUpdate(args []string) error {
	fs := c.newFlagSet("update")
	id := fs.String("id", "", "Component ID")
	var name, description, category, public optionalString
	fs.Var(&name, "name", "New name")
	fs.Var(&description, "description", "New description")
	fs.Var(&category, "category", "New category")
	fs.Var(&public, "public", "Share the component (true|false)")
	codeFile := fs.String("code-file", "", "Read component code from this file")
	stylesFile := fs.String("styles-file", "", "Read component styles from this file")
	schemaFile := fs.String("schema-file", "", "Read the props schema (JSON) from this file")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		fmt.Fprintln(c.out, "Error: -id is required for update")
		return errUsage
	}

	u := componentmanager.Update{
		Name:        name.ptr(),
		Description: description.ptr(),
		Category:    category.ptr(),
	}
	if public.set {
		b, err := strconv.ParseBool(public.value)
		if err != nil {
			return fmt.Errorf("invalid -public value %q: %w", public.value, errUsage)
		}
		u.IsPublic = &b
	}
	var err error
	if u.Code, err = readOptional(*codeFile); err != nil {
		return err
	}
	if u.Styles, err = readOptional(*stylesFile); err != nil {
		return err
	}
	if *schemaFile != "" {
		data, err := fsutils.ReadFile(*schemaFile)
		if err != nil {
			return fmt.Errorf("reading schema file: %w", err)
		}
		var schema model.Schema
		if err := json.Unmarshal(data, &schema); err != nil {
			return fmt.Errorf("parsing schema file %s: %w", *schemaFile, err)
		}
		u.Schema = &schema
	}

	def, err := c.manager.UpdateComponent(*id, u)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Component '%s' is now at version %s\n", def.Name, def.Version)
	return nil
}

func readOptional(path string) (*string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := fsutils.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	s := string(data)
	return &s, nil
}

func (c *cli) handleDelete(args []string) error {
	fs := c.newFlagSet("delete")
	ids := fs.String("id", "", "Comma-separated component IDs")
	force := fs.Bool("force", false, "Remove the source folder and metadata")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *ids == "" {
		fmt.Fprintln(c.out, "Error: -id is required for delete")
		return errUsage
	}

	var targets []string
	for _, id := range strings.Split(*ids, ",") {
		if id = strings.TrimSpace(id); id != "" {
			targets = append(targets, id)
		}
	}
	if *force && !*yes {
		prompt := fmt.Sprintf("Permanently delete %d component(s)? This cannot be undone.", len(targets))
		if !c.askForConfirmation(prompt) {
			fmt.Fprintln(c.out, "Delete cancelled.")
			return nil
		}
	}

	var errs []error
	for _, id := range targets {
		if err := c.manager.DeleteComponent(id, *force); err != nil {
			fmt.Fprintf(c.out, "Failed to delete %s: %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		if *force {
			fmt.Fprintf(c.out, "Permanently deleted %s\n", id)
		} else {
			fmt.Fprintf(c.out, "Marked %s as removed\n", id)
		}
	}
	return errors.Join(errs...)
}

func (c *cli) handlePurge(args []string) error {
	fs := c.newFlagSet("purge-removed")
	yes := fs.Bool("yes", false, "Skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if !*yes && !c.askForConfirmation("Permanently delete all removed components?") {
		fmt.Fprintln(c.out, "Purge cancelled.")
		return nil
	}
	n, err := c.manager.PurgeInactive()
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Purged %d component(s).\n", n)
	return nil
}

func (c *cli) handleValidate(args []string) error {
	fs := c.newFlagSet("validate")
	file := fs.String("file", "", "Component source file")
	id := fs.String("id", "", "Validate a stored component")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	var code string
	switch {
	case *file != "":
		data, err := fsutils.ReadFile(*file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *file, err)
		}
		code = string(data)
	case *id != "":
		def, err := c.manager.Store().LoadComponent(*id)
		if err != nil {
			return fmt.Errorf("loading component %s: %w", *id, err)
		}
		code = def.Code
	default:
		fmt.Fprintln(c.out, "Error: one of -file or -id is required for validate")
		return errUsage
	}

	res := componentmanager.ValidateCode(code)
	for _, e := range res.Errors {
		fmt.Fprintf(c.out, "error: %s\n", e)
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(c.out, "warning: %s\n", w)
	}
	if !res.Valid {
		return componentmanager.ErrInvalidCode
	}
	fmt.Fprintln(c.out, "Code is valid.")
	return nil
}

func (c *cli) handleSync(args []string) error {
	fs := c.newFlagSet("sync")
	id := fs.String("id", "", "Component ID")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *id == "" {
		fmt.Fprintln(c.out, "Error: -id is required for sync")
		return errUsage
	}
	def, err := c.manager.SyncSources(*id)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Synced '%s' from %s (version %s)\n", def.Name, def.Directory, def.Version)
	return nil
}

func (c *cli) handleFunnels(args []string) error {
	fs := c.newFlagSet("funnels")
	group := fs.String("group", "", "Only list one group")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	templates := c.funnels.Templates()
	if *group != "" {
		templates = c.funnels.Group(composer.FunnelGroup(*group))
	}
	if len(templates) == 0 {
		fmt.Fprintln(c.out, "No funnel templates found.")
		return nil
	}
	for _, t := range templates {
		fmt.Fprintf(c.out, "- %s [%s] %s: %d components\n", t.ID, t.Group, t.Name, len(t.Components))
	}
	return nil
}

func (c *cli) handlePageCreate(ctx context.Context, args []string) error {
	fs := c.newFlagSet("page-create")
	website := fs.String("website", "", "Website ID")
	title := fs.String("title", "", "Page title")
	slug := fs.String("slug", "", "Page slug")
	order := fs.Int("order", 0, "Sort order")
	funnel := fs.String("funnel", "", "Seed the page from a funnel template")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *website == "" || strings.TrimSpace(*title) == "" || *slug == "" {
		fmt.Fprintln(c.out, "Error: -website, -title and -slug are required for page-create")
		return errUsage
	}

	page := &model.Page{WebsiteID: *website, Title: strings.TrimSpace(*title), Slug: *slug, SortOrder: *order}
	if *funnel != "" {
		e := c.composer(page.Content)
		defer e.Close()
		if !e.ApplyFunnelTemplate(*funnel) {
			return fmt.Errorf("unknown funnel template %q", *funnel)
		}
		page.Content = e.Content()
	}
	if err := c.pages.CreatePage(ctx, page); err != nil {
		return fmt.Errorf("creating page: %w", err)
	}
	fmt.Fprintf(c.out, "Created page '%s' with ID '%s' (%d components)\n", page.Title, page.ID, len(page.Content.Components))
	return nil
}

func (c *cli) composer(content model.ContentStructure) *composer.Engine {
	return composer.New(
		composer.WithLogger(c.logger),
		composer.WithFunnels(c.funnels),
		composer.WithCatalog(c.catalog),
		composer.WithContent(content),
	)
}

func (c *cli) handlePageList(ctx context.Context, args []string) error {
	fs := c.newFlagSet("page-list")
	website := fs.String("website", "", "Website ID")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *website == "" {
		fmt.Fprintln(c.out, "Error: -website is required for page-list")
		return errUsage
	}
	pages, err := c.pages.ListPages(ctx, *website)
	if err != nil {
		return fmt.Errorf("listing pages: %w", err)
	}
	if len(pages) == 0 {
		fmt.Fprintln(c.out, "No pages found.")
		return nil
	}
	for _, p := range pages {
		status := "draft"
		if p.IsPublished {
			status = "published"
		}
		fmt.Fprintf(c.out, "- %s /%s %q (%s, %d components)\n", p.ID, p.Slug, p.Title, status, len(p.Content.Components))
	}
	return nil
}

func (c *cli) handleApplyFunnel(ctx context.Context, args []string) error {
	fs := c.newFlagSet("apply-funnel")
	pageID := fs.String("page", "", "Page ID")
	funnel := fs.String("funnel", "", "Funnel template ID")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *pageID == "" || *funnel == "" {
		fmt.Fprintln(c.out, "Error: -page and -funnel are required for apply-funnel")
		return errUsage
	}

	page, err := c.pages.GetPage(ctx, *pageID)
	if err != nil {
		return fmt.Errorf("loading page %s: %w", *pageID, err)
	}
	e := c.composer(page.Content)
	defer e.Close()
	if !e.ApplyFunnelTemplate(*funnel) {
		return fmt.Errorf("unknown funnel template %q", *funnel)
	}
	content := e.Content()
	if err := c.pages.SavePageContent(ctx, page.ID, content); err != nil {
		return fmt.Errorf("saving page %s: %w", page.ID, err)
	}
	fmt.Fprintf(c.out, "Applied '%s' to page %s (%d components)\n", *funnel, page.ID, len(content.Components))
	return nil
}

func (c *cli) handlePublish(ctx context.Context, args []string) error {
	fs := c.newFlagSet("publish")
	pageID := fs.String("page", "", "Page ID")
	unpublish := fs.Bool("unpublish", false, "Take the page offline")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *pageID == "" {
		fmt.Fprintln(c.out, "Error: -page is required for publish")
		return errUsage
	}
	if err := c.pages.SetPublished(ctx, *pageID, !*unpublish); err != nil {
		return fmt.Errorf("updating page %s: %w", *pageID, err)
	}
	if *unpublish {
		fmt.Fprintf(c.out, "Page %s is now a draft\n", *pageID)
	} else {
		fmt.Fprintf(c.out, "Page %s is published\n", *pageID)
	}
	return nil
}

// handlePreview renders a page, published or not, as a static document.
func (c *cli) handlePreview(ctx context.Context, args []string) error {
	fs := c.newFlagSet("preview")
	pageID := fs.String("page", "", "Page ID")
	out := fs.String("out", "", "Write the document to this file")
	open := fs.Bool("open", false, "Open the preview in a browser")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *pageID == "" {
		fmt.Fprintln(c.out, "Error: -page is required for preview")
		return errUsage
	}

	doc, err := c.pageEngine.RenderPage(ctx, *pageID, false)
	if err != nil {
		return fmt.Errorf("rendering page %s: %w", *pageID, err)
	}

	path := *out
	if path == "" && *open {
		f, err := os.CreateTemp("", "page-preview-*.html")
		if err != nil {
			return fmt.Errorf("creating preview file: %w", err)
		}
		path = f.Name()
		f.Close()
	}
	if path == "" {
		fmt.Fprintln(c.out, doc)
		return nil
	}
	if err := fsutils.WriteToFile(path, []byte(doc)); err != nil {
		return fmt.Errorf("writing preview: %w", err)
	}
	fmt.Fprintf(c.out, "Preview written to %s\n", path)
	if *open {
		if err := openBrowser("file://" + path); err != nil {
			fmt.Fprintf(c.out, "Could not open a browser: %v\n", err)
		}
	}
	return nil
}

func openBrowser(url string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "windows":
		cmd = exec.Command("rundll32", "url.dll,FileProtocolHandler", url)
	case "darwin":
		cmd = exec.Command("open", url)
	default:
		cmd = exec.Command("xdg-open", url)
	}
	return cmd.Start()
}
