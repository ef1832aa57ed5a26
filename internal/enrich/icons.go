package enrich

import (
	"math"
	"slices"
	"strings"
)

var weatherIcons = map[int]string{
	0: "☀️", 1: "🌤️", 2: "⛅️", 3: "☁️",
	45: "🌫️", 48: "🌫️",
	51: "🌦️", 53: "🌦️", 55: "🌦️",
	61: "🌧️", 63: "🌧️", 65: "🌧️",
	71: "🌨️", 73: "🌨️", 75: "🌨️",
	80: "🌧️", 81: "🌧️", 82: "⛈️",
	95: "⛈️",
}

// rainCodes are the WMO weather codes that call for an umbrella.
var rainCodes = []int{51, 53, 55, 61, 63, 65, 80, 81, 82, 95}

// WeatherIcon maps a WMO weather code to an emoji.
func WeatherIcon(code int) string {
	if icon, ok := weatherIcons[code]; ok {
		return icon
	}
	return "🌡️"
}

// ClothingIcons suggests what to wear for a day with the given maximum
// temperature in °C and weather code.
func ClothingIcons(maxTemp int, code int) string {
	var icons []string
	switch {
	case maxTemp >= 23:
		icons = append(icons, "👕", "🕶️")
	case maxTemp > 16:
		icons = append(icons, "👚")
	case maxTemp > 10:
		icons = append(icons, "🧥")
	default:
		icons = append(icons, "🧥", "🧣")
	}
	if slices.Contains(rainCodes, code) {
		icons = append(icons, "☂️")
	}
	return strings.Join(icons, " ")
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 becomes -2.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
