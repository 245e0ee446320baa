package commands

import (
	"context"
	"fmt"

	"github.com/healthhub/shopctl/internal/catalog"
	"github.com/healthhub/shopctl/internal/images"
)

type ArticlesCmd struct {
	List   ArticlesListCmd   `cmd:"" default:"1" help:"List articles."`
	Add    ArticlesAddCmd    `cmd:"" help:"Publish an article (admin)."`
	Delete ArticlesDeleteCmd `cmd:"" help:"Delete an article (admin)."`
}

type ArticlesListCmd struct{}

func (a *ArticlesListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	articles, err := app.catalog.ListArticles(ctx)
	if err != nil {
		return err
	}
	for _, art := range articles {
		fmt.Printf("%-24s %-12s %s\n", art.ID, art.Category, art.Title)
	}
	return nil
}

type ArticlesAddCmd struct {
	Title       string `help:"Article title." required:""`
	Content     string `help:"Article body." required:""`
	Description string `help:"Short description."`
	Category    string `help:"Article category."`
	Image       string `help:"Path to a cover image to upload."`
}

func (a *ArticlesAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	imageURL, err := uploadImage(ctx, app, a.Image)
	if err != nil {
		return err
	}

	err = app.catalog.CreateArticle(ctx, catalog.Article{
		Title:       a.Title,
		Content:     a.Content,
		Description: a.Description,
		Category:    a.Category,
		ImageURL:    imageURL,
	})
	if err != nil {
		return err
	}
	fmt.Println("Article published.")
	return nil
}

type ArticlesDeleteCmd struct {
	ID string `arg:"" help:"Article id to delete."`
}

func (a *ArticlesDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.catalog.DeleteArticle(ctx, a.ID); err != nil {
		return err
	}
	fmt.Println("Article deleted.")
	return nil
}

type FoodCmd struct {
	List   FoodListCmd   `cmd:"" default:"1" help:"List food products."`
	Add    FoodAddCmd    `cmd:"" help:"Add a food product (admin)."`
	Delete FoodDeleteCmd `cmd:"" help:"Delete a food product (admin)."`
}

type FoodListCmd struct{}

func (f *FoodListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	food, err := app.catalog.ListFood(ctx)
	if err != nil {
		return err
	}
	for _, item := range food {
		fmt.Printf("%-24s %-32s ₹%.2f\n", item.ID, item.Name, item.Price)
	}
	return nil
}

type FoodAddCmd struct {
	Name        string  `help:"Product name." required:""`
	Description string  `help:"Product description."`
	Category    string  `help:"Product category."`
	Price       float64 `help:"Unit price." required:""`
	Image       string  `help:"Path to a product image to upload."`
}

func (f *FoodAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	imageURL, err := uploadImage(ctx, app, f.Image)
	if err != nil {
		return err
	}

	err = app.catalog.CreateFood(ctx, catalog.Food{
		Name:        f.Name,
		Description: f.Description,
		Category:    f.Category,
		Price:       f.Price,
		ImageURL:    imageURL,
	})
	if err != nil {
		return err
	}
	fmt.Println("Food product added.")
	return nil
}

type FoodDeleteCmd struct {
	ID string `arg:"" help:"Product id to delete."`
}

func (f *FoodDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.catalog.DeleteFood(ctx, f.ID); err != nil {
		return err
	}
	fmt.Println("Food product deleted.")
	return nil
}

type EquipmentCmd struct {
	List   EquipmentListCmd   `cmd:"" default:"1" help:"List equipment products."`
	Add    EquipmentAddCmd    `cmd:"" help:"Add an equipment product (admin)."`
	Delete EquipmentDeleteCmd `cmd:"" help:"Delete an equipment product (admin)."`
}

type EquipmentListCmd struct{}

func (e *EquipmentListCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	equipment, err := app.catalog.ListEquipment(ctx)
	if err != nil {
		return err
	}
	for _, item := range equipment {
		fmt.Printf("%-24s %-32s ₹%.2f\n", item.ID, item.Name, item.Price)
	}
	return nil
}

type EquipmentAddCmd struct {
	Name        string  `help:"Product name." required:""`
	Description string  `help:"Product description."`
	Category    string  `help:"Product category."`
	Price       float64 `help:"Unit price." required:""`
	Image       string  `help:"Path to a product image to upload."`
}

func (e *EquipmentAddCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	imageURL, err := uploadImage(ctx, app, e.Image)
	if err != nil {
		return err
	}

	err = app.catalog.CreateEquipment(ctx, catalog.Equipment{
		Name:        e.Name,
		Description: e.Description,
		Category:    e.Category,
		Price:       e.Price,
		ImageURL:    imageURL,
	})
	if err != nil {
		return err
	}
	fmt.Println("Equipment product added.")
	return nil
}

type EquipmentDeleteCmd struct {
	ID string `arg:"" help:"Product id to delete."`
}

func (e *EquipmentDeleteCmd) Run(ctx context.Context, globals *Globals) error {
	app, err := globals.bootstrap()
	if err != nil {
		return err
	}
	defer app.session.Close()

	if err := app.catalog.DeleteEquipment(ctx, e.ID); err != nil {
		return err
	}
	fmt.Println("Equipment product deleted.")
	return nil
}

// uploadImage pushes a local image to Cloudinary and returns the hosted URL.
// An empty path means no image, not an error.
func uploadImage(ctx context.Context, app *appContext, path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if app.cfg.Cloudinary.CloudName == "" || app.cfg.Cloudinary.UploadPreset == "" {
		return "", fmt.Errorf("cloudinary is not configured, set cloudinary.cloudName and cloudinary.uploadPreset")
	}
	uploader := images.New(app.cfg.Cloudinary.CloudName, app.cfg.Cloudinary.UploadPreset)
	url, err := uploader.UploadFile(ctx, path)
	if err != nil {
		return "", fmt.Errorf("image upload failed: %w", err)
	}
	return url, nil
}
