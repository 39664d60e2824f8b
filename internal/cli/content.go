package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jrsteele09/go-cms-client/cms"
	cmserrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/internal/utils"
)

func (a *app) articlesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "articles",
		Short: "Manage articles",
	}
	cmd.AddCommand(
		a.articlesListCmd(),
		a.articleSlugCmd("get", "Show an article with its content", func(c *cms.Client) slugAction { return c.Articles.Get }),
		a.articlesCreateCmd(),
		a.articlesDeleteCmd(),
		a.articleSlugCmd("publish", "Publish an article", func(c *cms.Client) slugAction { return c.Articles.Publish }),
		a.articleSlugCmd("unpublish", "Move an article back to draft", func(c *cms.Client) slugAction { return c.Articles.Unpublish }),
	)
	return cmd
}

func (a *app) articlesListCmd() *cobra.Command {
	var (
		page, perPage, categoryID int
		status, search            string
		all                       bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List articles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			params := cms.ListArticlesParams{Search: search}
			flags := cmd.Flags()
			if flags.Changed("page") {
				params.Page = utils.Ptr(page)
			}
			if flags.Changed("per-page") {
				params.PerPage = utils.Ptr(perPage)
			}
			if flags.Changed("category") {
				params.CategoryID = utils.Ptr(categoryID)
			}
			switch {
			case all:
				params.Status = utils.Ptr(cms.StatusAny)
			case status != "":
				params.Status = utils.Ptr(status)
			}

			list, err := c.Articles.List(cmd.Context(), params)
			if err != nil {
				return a.fail("articles list", err)
			}
			return a.printJSON(list)
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&perPage, "per-page", 10, "articles per page")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category id")
	cmd.Flags().StringVar(&status, "status", "", "draft, published or archived")
	cmd.Flags().StringVar(&search, "search", "", "search titles")
	cmd.Flags().BoolVar(&all, "all", false, "list articles in every status")
	cmd.MarkFlagsMutuallyExclusive("all", "status")
	return cmd
}

type slugAction func(ctx context.Context, slug string) (*cms.Article, error)

func (a *app) articleSlugCmd(use, short string, action func(*cms.Client) slugAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " SLUG",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			article, err := action(c)(cmd.Context(), args[0])
			if err != nil {
				return a.fail("articles "+use, err)
			}
			return a.printJSON(article)
		},
	}
}

func (a *app) articlesCreateCmd() *cobra.Command {
	var (
		in          cms.ArticleInput
		contentFile string
		categoryID  int
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an article",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if contentFile != "" {
				data, err := os.ReadFile(contentFile)
				if err != nil {
					return a.fail("articles create", err)
				}
				in.Content = string(data)
			}
			if in.Content == "" {
				return a.fail("articles create", fmt.Errorf("--content or --content-file is required: %w", cmserrors.ErrInvalidArgument))
			}
			if cmd.Flags().Changed("category") {
				in.CategoryID = utils.Ptr(categoryID)
			}

			article, err := c.Articles.Create(cmd.Context(), in)
			if err != nil {
				return a.fail("articles create", err)
			}
			return a.printJSON(article)
		},
	}
	cmd.Flags().StringVar(&in.Title, "title", "", "article title")
	cmd.Flags().StringVar(&in.Slug, "slug", "", "URL slug (derived from the title when omitted)")
	cmd.Flags().StringVar(&in.Content, "content", "", "markdown content")
	cmd.Flags().StringVar(&contentFile, "content-file", "", "read the markdown content from a file")
	cmd.Flags().StringVar(&in.Excerpt, "excerpt", "", "short summary")
	cmd.Flags().StringVar(&in.CoverImage, "cover-image", "", "cover image URL")
	cmd.Flags().StringVar(&in.Status, "status", "", "initial status (default draft)")
	cmd.Flags().IntVar(&categoryID, "category", 0, "category id")
	_ = cmd.MarkFlagRequired("title")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file")
	return cmd
}

func (a *app) articlesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete SLUG",
		Short: "Delete an article",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Articles.Delete(cmd.Context(), args[0]); err != nil {
				return a.fail("articles delete", err)
			}
			return a.printJSON(cms.Message{Message: "Article deleted"})
		},
	}
}

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage categories",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			cats, err := c.Categories.List(cmd.Context())
			if err != nil {
				return a.fail("categories list", err)
			}
			return a.printJSON(cats)
		},
	}

	var (
		in        cms.CategoryInput
		sortOrder int
	)
	create := &cobra.Command{
		Use:   "create NAME",
		Short: "Create a category (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			in.Name = args[0]
			if cmd.Flags().Changed("sort-order") {
				in.SortOrder = utils.Ptr(sortOrder)
			}
			cat, err := c.Categories.Create(cmd.Context(), in)
			if err != nil {
				return a.fail("categories create", err)
			}
			return a.printJSON(cat)
		},
	}
	create.Flags().StringVar(&in.Slug, "slug", "", "URL slug (derived from the name when omitted)")
	create.Flags().StringVar(&in.Description, "description", "", "description")
	create.Flags().IntVar(&sortOrder, "sort-order", 0, "position in listings")

	del := &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a category without articles (admin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return a.fail("categories delete", err)
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.Categories.Delete(cmd.Context(), id); err != nil {
				return a.fail("categories delete", err)
			}
			return a.printJSON(cms.Message{Message: "Category deleted"})
		},
	}

	cmd.AddCommand(list, create, del)
	return cmd
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id %q must be a positive integer: %w", s, cmserrors.ErrInvalidArgument)
	}
	return id, nil
}
