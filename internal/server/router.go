package server

import (
	"context"
	"net/http"

	"crunchpunch/internal/handlers"
	applog "crunchpunch/internal/log"
)

func newRouter() http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")
	mux.HandleFunc("/healthz", handlers.Health)
	applog.Debug(context.Background(), "route registered", "path", "/healthz")

	mux.HandleFunc("/api/auth/login", handlers.Login)
	mux.HandleFunc("/api/auth/register", handlers.Register)
	mux.HandleFunc("/api/auth/logout", handlers.Logout)
	applog.Debug(context.Background(), "route registered", "path", "/api/auth/")

	resources := []struct {
		path    string
		handler http.HandlerFunc
	}{
		{"/api/food", handlers.FoodResource},
		{"/api/nutrition", handlers.NutritionResource},
		{"/api/salad", handlers.SaladResource},
		{"/api/mixture", handlers.MixtureResource},
		{"/api/company", handlers.CompanyResource},
	}
	for _, resource := range resources {
		mux.HandleFunc(resource.path, resource.handler)
		mux.HandleFunc(resource.path+"/", resource.handler)
		applog.Debug(context.Background(), "route registered", "path", resource.path, "protected", true)
	}

	mux.HandleFunc("/app/salad/", handlers.CompositionLabel)
	mux.HandleFunc("/app/mixture/", handlers.CompositionLabel)
	mux.HandleFunc("/app/foods", handlers.FoodsPage)
	applog.Debug(context.Background(), "route registered", "path", "/app/", "protected", true)
	return mux
}
