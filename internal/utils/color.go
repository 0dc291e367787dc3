// internal/utils/color.go - 主色调解析与相似度计算
package utils

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RGB 三通道颜色
type RGB struct {
	R, G, B int
}

// NormalizeColor 标准化颜色字符串为 #RRGGBB 格式。
// 兼容 0x 前缀与历史的 5 位色值(第二通道缺一位, 补 0)。
func NormalizeColor(color string) (string, error) {
	s := strings.TrimSpace(color)
	s = strings.TrimPrefix(s, "#")
	s = strings.TrimPrefix(s, "0x")
	s = strings.TrimPrefix(s, "0X")
	if len(s) == 5 {
		s = s[:2] + "0" + s[2:]
	}
	if len(s) != 6 {
		return "", fmt.Errorf("无效的颜色值: %s", color)
	}
	if _, err := strconv.ParseUint(s, 16, 32); err != nil {
		return "", fmt.Errorf("无效的颜色值: %s", color)
	}
	return "#" + strings.ToUpper(s), nil
}

// ParseColor 解析 #RRGGBB 为三通道
func ParseColor(color string) (RGB, error) {
	normalized, err := NormalizeColor(color)
	if err != nil {
		return RGB{}, err
	}
	v, err := strconv.ParseUint(normalized[1:], 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("无效的颜色值: %s", color)
	}
	return RGB{
		R: int(v >> 16 & 0xFF),
		G: int(v >> 8 & 0xFF),
		B: int(v & 0xFF),
	}, nil
}

// ColorSimilarity 计算两个颜色的相似度, 取值 [0,1], 越大越相似。
// 基于 RGB 空间的欧氏距离归一化。
func ColorSimilarity(c1, c2 RGB) float64 {
	dr := float64(c1.R - c2.R)
	dg := float64(c1.G - c2.G)
	db := float64(c1.B - c2.B)
	distance := math.Sqrt(dr*dr + dg*dg + db*db)
	maxDistance := math.Sqrt(3 * 255 * 255)
	return 1 - distance/maxDistance
}
