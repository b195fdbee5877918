package main

import (
	"fmt"

	"artisanal-futures/internal/app"
	"artisanal-futures/internal/repository/postgres"
	"artisanal-futures/internal/service/category"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Category maintenance",
}

// categoriesDisassociateCmd unlinks every product and service from a category.
var categoriesDisassociateCmd = &cobra.Command{
	Use:   "disassociate <category-id>",
	Short: "Remove all product and service links of a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoriesDisassociate,
}

func init() {
	categoriesCmd.AddCommand(categoriesDisassociateCmd)
}

func runCategoriesDisassociate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	infra, err := app.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	svc := category.NewCategoryService(postgres.NewCategoryRepository(infra.Pool), logger)
	result, err := svc.DisassociateProducts(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "category %s: removed %d product links, %d service links\n",
		result.CategoryID, result.ProductsRemoved, result.ServicesRemoved)
	return nil
}
