package main

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/unclebandit/campaign-crm/internal/service"
)

type seedFile struct {
	Customers []service.CustomerInput `yaml:"customers"`
	Orders    []service.OrderInput    `yaml:"orders"`
}

func loadSeedFile(path string) (*seedFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var f seedFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse seed file %s: %w", path, err)
	}
	if len(f.Customers) == 0 && len(f.Orders) == 0 {
		return nil, fmt.Errorf("seed file %s has no customers or orders", path)
	}
	return &f, nil
}

// seed inserts customers before orders so order rows can reference them.
func seed(ctx context.Context, svc *service.IngestionService, f *seedFile) (int, int, error) {
	var customers, orders int
	var err error

	if len(f.Customers) > 0 {
		if customers, err = svc.AddCustomers(ctx, f.Customers); err != nil {
			return 0, 0, fmt.Errorf("seed customers: %w", err)
		}
	}
	if len(f.Orders) > 0 {
		if orders, err = svc.AddOrders(ctx, f.Orders); err != nil {
			return customers, 0, fmt.Errorf("seed orders: %w", err)
		}
	}
	return customers, orders, nil
}
