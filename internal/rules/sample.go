package rules

import "compass/internal/constants"

var sampleCSV = []byte(`Country Code,Country Name,CA Type,CS Type,Company Type,Compliance Name,Compliance Description,Frequency,Verification Required
IN,India,CA,CS,Private Limited,Annual Return Filing,File annual return with the registrar,annual,CS
IN,India,CA,CS,Private Limited,Statutory Audit,Audit of financial statements by a chartered accountant,annual,CA
IN,India,CA,CS,Private Limited,Board Meeting Minutes,Record and maintain minutes of board meetings,monthly,CS
US,United States,CPA,Corporate Secretary,LLC,Federal Tax Return,File federal income tax return,annual,CA
US,United States,CPA,Corporate Secretary,LLC,Initial Registration,First-year state registration and licensing,first-year,both
SG,Singapore,CA,CS,Private Limited,GST Filing,Quarterly goods and services tax filing,quarterly,CA
`)

// SampleCSV returns the static import template offered for download.
func SampleCSV() (fileName string, content []byte) {
	return constants.SampleFileName, sampleCSV
}
