package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"

	"fundis/internal/config"
	"fundis/internal/database"
	"fundis/internal/domain"
	"fundis/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseDSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	posts := repository.NewPostRepository(db)
	categories := repository.NewCategoryRepository(db)

	existing, err := posts.List(ctx)
	if err != nil {
		log.Fatal(err)
	}
	if len(existing) > 0 {
		log.Printf("seed skipped: %d posts already present", len(existing))
		return
	}

	for _, c := range []domain.Category{
		{Name: "Development", Description: "Programming and software development"},
		{Name: "Design", Description: "UI/UX and graphic design"},
		{Name: "Backend", Description: "Server-side development"},
	} {
		cat := c
		if err := categories.Create(ctx, &cat); err != nil {
			log.Printf("seed category %q failed: %v", c.Name, err)
		}
	}

	for _, p := range []domain.Post{
		{
			Title:    "Getting Started with React and TypeScript",
			Content:  "React with TypeScript provides excellent type safety and developer experience. In this comprehensive guide, we'll explore how to set up a React project with TypeScript and build robust applications.",
			Excerpt:  "Learn how to build robust React applications with TypeScript for better type safety and developer experience.",
			Author:   "John Doe",
			Category: "Development",
			Tags:     []string{"React", "TypeScript", "Frontend"},
			ImageURL: "https://images.unsplash.com/photo-1461749280684-dccba630e2f6?w=800&h=400&fit=crop",
		},
		{
			Title:    "Modern CSS Techniques for Better UX",
			Content:  "CSS has evolved significantly over the years. Modern CSS features like Grid, Flexbox, and CSS Variables allow us to create beautiful, responsive designs with less code.",
			Excerpt:  "Explore modern CSS features that will help you create stunning user interfaces.",
			Author:   "Jane Smith",
			Category: "Design",
			Tags:     []string{"CSS", "Design", "UX"},
			ImageURL: "https://images.unsplash.com/photo-1487058792275-0ad4aaf24ca7?w=800&h=400&fit=crop",
		},
		{
			Title:    "Building Scalable APIs with Node.js",
			Content:  "Learn how to build robust and scalable APIs using Node.js and Express. We'll cover best practices, error handling, and performance optimization.",
			Excerpt:  "Best practices for building scalable and maintainable APIs with Node.js.",
			Author:   "Mike Johnson",
			Category: "Backend",
			Tags:     []string{"Node.js", "API", "Backend"},
			ImageURL: "https://images.unsplash.com/photo-1518770660439-4636190af475?w=800&h=400&fit=crop",
		},
	} {
		post := p
		if err := posts.Create(ctx, &post); err != nil {
			log.Fatalf("seed post %q failed: %v", p.Title, err)
		}
	}

	log.Println("seed complete")
}
