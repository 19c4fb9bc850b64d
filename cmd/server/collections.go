package main

// Demo collections backing the gateway models.

import (
	"github.com/pocketbase/pocketbase/core"
)

// registerCollections sets up the demo collections on serve.
func registerCollections(app core.App) {
	app.OnServe().BindFunc(func(e *core.ServeEvent) error {
		if err := productsCollection(e.App); err != nil {
			app.Logger().Error("Failed to create products collection", "error", err)
		}
		if err := ordersCollection(e.App); err != nil {
			app.Logger().Error("Failed to create orders collection", "error", err)
		}
		return e.Next()
	})
}

// productsCollection creates the products collection used by the grid demo.
func productsCollection(app core.App) error {
	if existing, _ := app.FindCollectionByNameOrId("products"); existing != nil {
		return nil
	}

	collection := core.NewBaseCollection("products")

	collection.Fields.Add(&core.TextField{
		Name:     "name",
		Required: true,
		Max:      200,
	})
	collection.Fields.Add(&core.TextField{
		Name: "description",
		Max:  2000,
	})
	collection.Fields.Add(&core.NumberField{
		Name: "price",
	})
	collection.Fields.Add(&core.SelectField{
		Name:   "category",
		Values: []string{"hardware", "software", "service"},
	})
	collection.Fields.Add(&core.BoolField{
		Name: "active",
	})
	collection.Fields.Add(&core.AutodateField{
		Name:     "created",
		OnCreate: true,
	})
	collection.Fields.Add(&core.AutodateField{
		Name:     "updated",
		OnCreate: true,
		OnUpdate: true,
	})

	collection.AddIndex("idx_products_category", false, "category", "")
	collection.AddIndex("idx_products_active", false, "active", "")

	if err := app.Save(collection); err != nil {
		return err
	}
	app.Logger().Info("Created products collection")
	return nil
}

// ordersCollection creates the orders collection, with a relation to
// products and a soft-delete timestamp.
func ordersCollection(app core.App) error {
	if existing, _ := app.FindCollectionByNameOrId("orders"); existing != nil {
		return nil
	}

	products, err := app.FindCollectionByNameOrId("products")
	if err != nil {
		return err
	}

	collection := core.NewBaseCollection("orders")

	collection.Fields.Add(&core.RelationField{
		Name:         "product",
		Required:     true,
		CollectionId: products.Id,
	})
	collection.Fields.Add(&core.NumberField{
		Name:     "quantity",
		Required: true,
	})
	collection.Fields.Add(&core.SelectField{
		Name:   "status",
		Values: []string{"pending", "paid", "shipped", "canceled"},
	})
	collection.Fields.Add(&core.TextField{
		Name: "note",
		Max:  1000,
	})
	collection.Fields.Add(&core.DateField{
		Name: "deleted",
	})
	collection.Fields.Add(&core.AutodateField{
		Name:     "created",
		OnCreate: true,
	})
	collection.Fields.Add(&core.AutodateField{
		Name:     "updated",
		OnCreate: true,
		OnUpdate: true,
	})

	collection.AddIndex("idx_orders_status", false, "status", "")

	if err := app.Save(collection); err != nil {
		return err
	}
	app.Logger().Info("Created orders collection")
	return nil
}
