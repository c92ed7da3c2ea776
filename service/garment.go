package service

import (
	"errors"
	"strings"

	"github.com/dryp3004/DRYP-Preview/config"
	"github.com/dryp3004/DRYP-Preview/model"
)

var ErrUnknownGarment = errors.New("unknown garment")

// Catalog 服装款式与正反面素材
type Catalog struct {
	garments []config.GarmentConfig
}

func NewCatalog(garments []config.GarmentConfig) *Catalog {
	return &Catalog{garments: garments}
}

func (c *Catalog) find(garmentType, color string) (config.GarmentConfig, bool) {
	for _, g := range c.garments {
		if strings.EqualFold(g.Type, garmentType) && strings.EqualFold(g.Color, color) {
			return g, true
		}
	}
	return config.GarmentConfig{}, false
}

// Resolve 校验服装并补全默认值，未指定时取第一个款式
func (c *Catalog) Resolve(g model.Garment) (model.Garment, error) {
	if len(c.garments) == 0 {
		return model.Garment{}, ErrUnknownGarment
	}
	if g.Type == "" {
		g.Type = c.garments[0].Type
	}
	if g.Color == "" {
		for _, cfg := range c.garments {
			if strings.EqualFold(cfg.Type, g.Type) {
				g.Color = cfg.Color
				break
			}
		}
	}
	found, ok := c.find(g.Type, g.Color)
	if !ok {
		return model.Garment{}, ErrUnknownGarment
	}
	g.Type, g.Color = found.Type, found.Color
	return g, nil
}

// Asset 返回服装某一面的素材，找不到时为空
func (c *Catalog) Asset(g model.Garment, v model.View) string {
	found, ok := c.find(g.Type, g.Color)
	if !ok {
		return ""
	}
	if v == model.ViewBack {
		return found.Back
	}
	return found.Front
}

// HasColor 判断是否存在该颜色的款式
func (c *Catalog) HasColor(color string) bool {
	for _, g := range c.garments {
		if strings.EqualFold(g.Color, color) {
			return true
		}
	}
	return false
}
