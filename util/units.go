package util

type TemperatureUnits string

const (
	Celsius    TemperatureUnits = "Celsius"
	Fahrenheit TemperatureUnits = "Fahrenheit"
)

// TempCToF converts temperature degrees from Celsius to Fahrenheit
func TempCToF(tempC float64) float64 {
	return tempC*9/5 + 32
}

// TempFToC converts temperature degrees from Fahrenheit to Celsius
func TempFToC(tempF float64) float64 {
	return (tempF - 32) * 5 / 9
}

// DeciKelvinToC converts the device's tenths-of-a-kelvin readings (tact) to
// Celsius.
func DeciKelvinToC(deciKelvin float64) float64 {
	return deciKelvin/10 - 273.15
}

// Temperature converts a tact reading into the preferred units.
func Temperature(deciKelvin float64, units TemperatureUnits) float64 {
	c := DeciKelvinToC(deciKelvin)
	if units == Fahrenheit {
		return TempCToF(c)
	}
	return c
}
