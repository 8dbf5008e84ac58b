package store

import "github.com/fairyhunter13/vegifarm-storefront/internal/model"

// DefaultCategory labels products that carry no badge.
const DefaultCategory = "野菜"

// Seed returns the built-in catalog used when nothing usable is stored.
func Seed() []model.Product {
	return []model.Product{
		{
			ID:          "premium-mini-tomato",
			Name:        "高糖度ミニトマト",
			Description: "糖度10度以上！フルーツのような甘さとジューシーさが特徴の特選ミニトマト。一粒一粒に農家のこだわりが詰まっています。",
			Price:       "¥900",
			PriceNumber: 900,
			Unit:        "500g",
			Image:       "https://images.unsplash.com/photo-1624720114008-d94d0ec5f9ed?w=1080",
			Badge:       "プレミアム",
			Stock:       model.IntPtr(8),
		},
		{
			ID:          "mini-tomato",
			Name:        "ミニトマト",
			Description: "野菜ソムリエサミット銀賞受賞！甘みと旨味が凝縮された極上のミニトマト。",
			Price:       "¥700",
			PriceNumber: 700,
			Unit:        "500g",
			Image:       "https://images.unsplash.com/photo-1588306457968-d862c58419ce?w=1080",
			Badge:       "銀賞受賞",
			Stock:       model.IntPtr(10),
			Award:       true,
		},
		{
			ID:          "tomato",
			Name:        "完熟トマト",
			Description: "太陽の光をたっぷり浴びた甘みたっぷりのトマトです。",
			Price:       "¥800",
			PriceNumber: 800,
			Unit:        "1kg",
			Image:       "https://images.unsplash.com/photo-1649629174655-a6510a8066e6?w=1080",
			Badge:       "人気",
			Stock:       model.IntPtr(5),
		},
		{
			ID:          "leafy-greens",
			Name:        "新鮮葉物野菜",
			Description: "シャキシャキ食感の採れたてレタスやほうれん草の詰め合わせ。",
			Price:       "¥600",
			PriceNumber: 600,
			Unit:        "300g",
			Image:       "https://images.unsplash.com/photo-1741515042603-70545daeb0c4?w=1080",
			Badge:       "おすすめ",
			Stock:       model.IntPtr(15),
		},
		{
			ID:          "carrots",
			Name:        "有機人参",
			Description: "甘みと栄養がぎゅっと詰まった、土の香り豊かな人参。",
			Price:       "¥500",
			PriceNumber: 500,
			Unit:        "500g",
			Image:       "https://images.unsplash.com/photo-1603462903957-566630607cc7?w=1080",
			Stock:       model.IntPtr(0),
		},
		{
			ID:          "seasonal-set",
			Name:        "季節の野菜セット",
			Description: "旬の野菜を農家が厳選してお届けする特別セット。",
			Price:       "¥2,500",
			PriceNumber: 2500,
			Unit:        "約3kg",
			Image:       "https://images.unsplash.com/photo-1668434484147-2545d8cdafe2?w=1080",
			Badge:       "お得",
			Stock:       model.IntPtr(20),
		},
	}
}
