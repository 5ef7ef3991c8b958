package countries

// fallbackDesignations covers common jurisdictions for deployments whose
// rule store has no designation data yet. Lookups consult the registry and
// the rule store first; this table is last.
var fallbackDesignations = map[string]struct {
	ca string
	cs string
}{
	"IN": {"Chartered Accountant", "Company Secretary"},
	"US": {"CPA", "Corporate Secretary"},
	"GB": {"Chartered Accountant", "Company Secretary"},
	"UK": {"Chartered Accountant", "Company Secretary"},
	"SG": {"Chartered Accountant", "Corporate Secretary"},
	"AU": {"CPA", "Company Secretary"},
	"CA": {"CPA", "Corporate Secretary"},
	"NZ": {"Chartered Accountant", "Company Secretary"},
	"AE": {"Chartered Accountant", "Company Secretary"},
	"HK": {"CPA", "Company Secretary"},
	"MY": {"Chartered Accountant", "Company Secretary"},
	"ZA": {"Chartered Accountant", "Company Secretary"},
	"IE": {"Chartered Accountant", "Company Secretary"},
	"DE": {"Wirtschaftspruefer", "Notary"},
	"FR": {"Expert-Comptable", "Legal Representative"},
	"NL": {"Registeraccountant", "Civil-law Notary"},
	"JP": {"CPA", "Judicial Scrivener"},
	"KR": {"CPA", "Judicial Scrivener"},
	"BR": {"Contador", "Legal Representative"},
	"MX": {"Contador Publico", "Legal Representative"},
	"IT": {"Dottore Commercialista", "Notary"},
	"ES": {"Auditor de Cuentas", "Legal Representative"},
	"PT": {"Revisor Oficial de Contas", "Legal Representative"},
	"CH": {"Licensed Audit Expert", "Notary"},
	"AT": {"Wirtschaftspruefer", "Notary"},
	"BE": {"Bedrijfsrevisor", "Notary"},
	"LU": {"Reviseur d'Entreprises", "Notary"},
	"SE": {"Auktoriserad Revisor", "Legal Representative"},
	"NO": {"Statsautorisert Revisor", "Legal Representative"},
	"DK": {"Statsautoriseret Revisor", "Legal Representative"},
	"FI": {"KHT Auditor", "Legal Representative"},
	"PL": {"Statutory Auditor", "Legal Representative"},
	"CZ": {"Statutory Auditor", "Notary"},
	"GR": {"Certified Auditor", "Legal Representative"},
	"TR": {"Sworn-in CPA", "Legal Representative"},
	"RU": {"Auditor", "Legal Representative"},
	"CN": {"CPA", "Legal Representative"},
	"TW": {"CPA", "Company Secretary"},
	"TH": {"CPA", "Company Secretary"},
	"VN": {"CPA", "Legal Representative"},
	"PH": {"CPA", "Corporate Secretary"},
	"ID": {"Akuntan Publik", "Corporate Secretary"},
	"BD": {"Chartered Accountant", "Company Secretary"},
	"PK": {"Chartered Accountant", "Company Secretary"},
	"LK": {"Chartered Accountant", "Company Secretary"},
	"NP": {"Chartered Accountant", "Company Secretary"},
	"SA": {"Certified Accountant", "Company Secretary"},
	"QA": {"Chartered Accountant", "Company Secretary"},
	"KW": {"Chartered Accountant", "Company Secretary"},
	"BH": {"Chartered Accountant", "Company Secretary"},
	"OM": {"Chartered Accountant", "Company Secretary"},
	"IL": {"CPA", "Company Secretary"},
	"EG": {"Chartered Accountant", "Legal Representative"},
	"NG": {"Chartered Accountant", "Company Secretary"},
	"KE": {"CPA", "Company Secretary"},
	"GH": {"Chartered Accountant", "Company Secretary"},
	"MU": {"Chartered Accountant", "Company Secretary"},
	"AR": {"Contador Publico", "Legal Representative"},
	"CL": {"Contador Auditor", "Legal Representative"},
	"CO": {"Contador Publico", "Legal Representative"},
	"PE": {"Contador Publico", "Legal Representative"},
}

func fallbackDesignation(code string) (caType, csType *string, ok bool) {
	entry, ok := fallbackDesignations[code]
	if !ok {
		return nil, nil, false
	}
	ca, cs := entry.ca, entry.cs
	return &ca, &cs, true
}
