package reports

import (
	"time"

	"github.com/estatedesk/estatedesk/internal/records"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// previewID derives stable identifiers so preview reports are reproducible.
func previewID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("estatedesk:preview:"+name))
}

func ptr[T any](v T) *T { return &v }

// previewSnapshot is the sample portfolio shown in preview mode. Its dated
// records are spread over rng so every chart has data.
func previewSnapshot(rng records.Range, scope records.Scope) records.Snapshot {
	from, to := rng.From, rng.To
	if !rng.Bounded() {
		to = time.Now().UTC()
		from = to.AddDate(0, 0, -defaultTrendDays)
	}
	step := to.Sub(from) / 6
	at := func(i int) time.Time { return from.Add(time.Duration(i)*step + step/2) }

	buildings := []records.Building{
		{ID: previewID("skyline"), Name: "Skyline Apartments", City: "Lagos", BuildingType: "apartment", TotalUnits: 24, YearBuilt: 2015, CreatedAt: from},
		{ID: previewID("downtown"), Name: "Downtown Lofts", City: "Lagos", BuildingType: "loft", TotalUnits: 12, YearBuilt: 2018, CreatedAt: from},
		{ID: previewID("parkview"), Name: "Parkview Heights", City: "Abuja", BuildingType: "apartment", TotalUnits: 18, YearBuilt: 2020, CreatedAt: from},
	}

	unit := func(name, building, location, category, status string, price int64, views int64, i int) records.Unit {
		u := records.Unit{
			ID:         previewID("unit:" + name),
			BuildingID: ptr(previewID(building)),
			Title:      name,
			Location:   location,
			Category:   category,
			Bedrooms:   2,
			Bathrooms:  2,
			Views:      views,
			Status:     status,
			CreatedAt:  at(i),
		}
		if category == records.CategorySale {
			u.SellingPrice = decimal.NewFromInt(price)
		} else {
			u.RentAmount = decimal.NewFromInt(price)
		}
		return u
	}
	units := []records.Unit{
		unit("Skyline 4B", "skyline", "Victoria Island", records.CategoryRent, records.UnitRented, 2850000, 420, 0),
		unit("Skyline 7A", "skyline", "Victoria Island", records.CategoryRent, records.UnitAvailable, 2600000, 310, 1),
		unit("Downtown Loft 2", "downtown", "Ikoyi", records.CategoryRent, records.UnitOccupied, 1900000, 260, 2),
		unit("Downtown Loft 5", "downtown", "Ikoyi", records.CategoryRent, records.UnitRented, 1750000, 190, 3),
		unit("Parkview Penthouse", "parkview", "Maitama", records.CategorySale, records.UnitAvailable, 185000000, 540, 4),
		unit("Parkview 3C", "parkview", "Maitama", records.CategoryRent, records.UnitRented, 1500000, 150, 5),
	}

	tenant := func(name string, u records.Unit, status, rent string, i int) records.Tenant {
		return records.Tenant{
			ID:          previewID("tenant:" + name),
			UnitID:      ptr(u.ID),
			Name:        name,
			Status:      status,
			RentStatus:  rent,
			MonthlyRent: u.RentAmount,
			MoveInDate:  at(i),
			CreatedAt:   at(i),
		}
	}
	tenants := []records.Tenant{
		tenant("Adaeze Okafor", units[0], records.TenantActive, records.RentCurrent, 0),
		tenant("Tunde Bakare", units[2], records.TenantActive, records.RentLate, 2),
		tenant("Ngozi Eze", units[3], records.TenantActive, records.RentCurrent, 3),
		tenant("Ibrahim Musa", units[5], records.TenantMovingOut, records.RentCurrent, 5),
	}

	var inquiries []records.Inquiry
	for i, target := range []int{0, 1, 1, 4, 4, 4, 2, -1} {
		inq := records.Inquiry{
			ID:        previewID("inquiry:" + string(rune('a'+i))),
			Subject:   "Viewing request",
			Status:    []string{records.InquiryNew, records.InquiryInProgress, records.InquiryResolved, records.InquiryPending}[i%4],
			CreatedAt: at(i % 6),
		}
		if target >= 0 {
			inq.UnitID = ptr(units[target].ID)
		}
		inquiries = append(inquiries, inq)
	}

	notices := []records.Notice{
		{ID: previewID("notice:rent"), TenantID: ptr(tenants[1].ID), Type: "rent-reminder", Status: records.NoticePending, DateIssued: at(4)},
		{ID: previewID("notice:exit"), TenantID: ptr(tenants[3].ID), Type: "move-out", Status: records.NoticePending, DateIssued: at(5)},
		{ID: previewID("notice:water"), Type: "maintenance", Status: records.NoticeDelivered, DateIssued: at(1)},
	}

	rent := []int64{8500000, 8750000, 9100000, 8900000, 9300000, 9500000}
	deposits := []int64{1200000, 980000, 1450000, 1100000, 1350000, 1200000}
	outflow := []int64{6200000, 6100000, 6800000, 6400000, 6900000, 7100000}
	expenseShares := []struct {
		category string
		pct      int64
	}{{"maintenance", 35}, {"utilities", 30}, {"insurance", 15}, {"property-tax", 10}, {"management", 10}}

	var txns []records.Transaction
	for i := range rent {
		txns = append(txns,
			records.Transaction{ID: previewID("rent:" + string(rune('a'+i))), Type: records.TxRevenue, Category: "rent", Amount: decimal.NewFromInt(rent[i]), Status: records.TxCompleted, Date: at(i), Description: "Rent collection"},
			records.Transaction{ID: previewID("deposit:" + string(rune('a'+i))), Type: records.TxRevenue, Category: "deposit", Amount: decimal.NewFromInt(deposits[i]), Status: records.TxCompleted, Date: at(i), Description: "Security deposit"},
		)
		for _, share := range expenseShares {
			txns = append(txns, records.Transaction{
				ID:          previewID("expense:" + share.category + ":" + string(rune('a'+i))),
				Type:        records.TxExpense,
				Category:    share.category,
				Amount:      decimal.NewFromInt(outflow[i] * share.pct / 100),
				Status:      records.TxCompleted,
				Date:        at(i),
				Description: "Operating expense",
			})
		}
	}
	txns = append(txns, records.Transaction{ID: previewID("utilities:pending"), Type: records.TxExpense, Category: "utilities", Amount: decimal.NewFromInt(320000), Status: records.TxPending, Date: at(5), Description: "Utility bills"})

	ads := []records.Ad{
		{ID: previewID("ad:skyline"), UnitID: units[1].ID, Title: "Skyline 7A, ocean view", Budget: decimal.NewFromInt(150000), Clicks: 320, Impressions: 12800, Conversions: 14, Status: records.AdActive, CreatedAt: at(1)},
		{ID: previewID("ad:penthouse"), UnitID: units[4].ID, Title: "Parkview Penthouse", Budget: decimal.NewFromInt(400000), Clicks: 610, Impressions: 20400, Conversions: 9, Status: records.AdActive, CreatedAt: at(2)},
		{ID: previewID("ad:loft"), UnitID: units[2].ID, Title: "Downtown Loft", Budget: decimal.NewFromInt(80000), Clicks: 95, Impressions: 5100, Conversions: 3, Status: records.AdCompleted, CreatedAt: at(0)},
	}

	wallet := records.Wallet{
		ID:               previewID("wallet:" + scope.TenantID.String()),
		Balance:          decimal.NewFromInt(370000),
		TotalDeposits:    decimal.NewFromInt(1000000),
		TotalWithdrawals: decimal.NewFromInt(0),
		TotalSpentOnAds:  decimal.NewFromInt(630000),
		Currency:         "NGN",
		Status:           "active",
	}
	walletTxns := []records.WalletTransaction{
		{ID: previewID("wtx:deposit"), WalletID: wallet.ID, Type: records.WalletDeposit, Amount: decimal.NewFromInt(1000000), Status: "completed", CreatedAt: at(0)},
		{ID: previewID("wtx:skyline"), WalletID: wallet.ID, Type: records.WalletAdSpend, Amount: decimal.NewFromInt(150000), Status: "completed", CreatedAt: at(1)},
		{ID: previewID("wtx:penthouse"), WalletID: wallet.ID, Type: records.WalletAdSpend, Amount: decimal.NewFromInt(400000), Status: "completed", CreatedAt: at(2)},
		{ID: previewID("wtx:loft"), WalletID: wallet.ID, Type: records.WalletAdSpend, Amount: decimal.NewFromInt(80000), Status: "completed", CreatedAt: at(3)},
	}

	return records.Snapshot{
		Buildings:          buildings,
		Units:              units,
		Tenants:            tenants,
		Inquiries:          inquiries,
		Notices:            notices,
		Transactions:       txns,
		Ads:                ads,
		Wallet:             wallet,
		WalletTransactions: walletTxns,
	}
}
