package ds3231

const (
	Address = 0x68 // I2C address for DS3231, not strappable

	Seconds     = 0x00 // Time registers starting with seconds: seconds, minutes, hours
	Day         = 0x03 // Day of the week, 1-7
	Date        = 0x04 // Date registers starting with the day of the month: date, month, year
	Control     = 0x0E // Control register
	Status      = 0x0F // Control and status register
	Temperature = 0x11 // Temperature registers, MSB then LSB

	// Status register bits
	OSF     = 7 // Oscillator stop flag
	EN32KHZ = 3
	BSY     = 2
	A2F     = 1
	A1F     = 0

	// Hours register bits
	hour12 = 0x40
	hourPM = 0x20
)
