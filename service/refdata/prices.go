package refdata

// solPriceHistory maps calendar month (YYYY-MM, UTC) to an approximate
// month-average SOL/USD price. Used to value historical balances; no
// network lookup is performed for history.
var solPriceHistory = map[string]float64{
	"2020-04": 0.8,
	"2020-05": 0.6,
	"2020-06": 0.7,
	"2020-07": 1.2,
	"2020-08": 3.4,
	"2020-09": 2.9,
	"2020-10": 2.2,
	"2020-11": 1.9,
	"2020-12": 1.6,
	"2021-01": 3.2,
	"2021-02": 12.0,
	"2021-03": 14.5,
	"2021-04": 28.0,
	"2021-05": 42.0,
	"2021-06": 35.0,
	"2021-07": 32.0,
	"2021-08": 72.0,
	"2021-09": 145.0,
	"2021-10": 165.0,
	"2021-11": 220.0,
	"2021-12": 185.0,
	"2022-01": 135.0,
	"2022-02": 98.0,
	"2022-03": 95.0,
	"2022-04": 105.0,
	"2022-05": 65.0,
	"2022-06": 38.0,
	"2022-07": 38.0,
	"2022-08": 40.0,
	"2022-09": 33.0,
	"2022-10": 31.0,
	"2022-11": 16.0,
	"2022-12": 12.0,
	"2023-01": 16.0,
	"2023-02": 22.0,
	"2023-03": 21.0,
	"2023-04": 22.0,
	"2023-05": 20.5,
	"2023-06": 17.5,
	"2023-07": 24.0,
	"2023-08": 22.0,
	"2023-09": 19.5,
	"2023-10": 27.0,
	"2023-11": 52.0,
	"2023-12": 88.0,
	"2024-01": 95.0,
	"2024-02": 105.0,
	"2024-03": 185.0,
	"2024-04": 155.0,
	"2024-05": 160.0,
	"2024-06": 145.0,
	"2024-07": 165.0,
	"2024-08": 150.0,
	"2024-09": 140.0,
	"2024-10": 165.0,
	"2024-11": 220.0,
	"2024-12": 215.0,
	"2025-01": 235.0,
	"2025-02": 175.0,
	"2025-03": 135.0,
	"2025-04": 130.0,
	"2025-05": 165.0,
	"2025-06": 150.0,
	"2025-07": 170.0,
	"2025-08": 185.0,
	"2025-09": 200.0,
	"2025-10": 190.0,
	"2025-11": 175.0,
	"2025-12": 180.0,
	"2026-01": 195.0,
	"2026-02": 185.0,
	"2026-03": 170.0,
	"2026-04": 160.0,
	"2026-05": 175.0,
	"2026-06": 180.0,
	"2026-07": 190.0,
	"2026-08": 185.0,
}

// PriceForMonth returns the approximate SOL/USD price for a YYYY-MM
// month, or 0 when the month is outside the table.
func PriceForMonth(month string) float64 {
	return solPriceHistory[month]
}
