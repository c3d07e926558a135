package constants

// FieldTranslation maps an attribute name in the mast feature layer to
// the name the document service expects.
type FieldTranslation struct {
	Source string
	Target string
}

// MastFieldTranslations lists the mast attributes that travel with an
// uploaded photo, in the order they were defined in the layer. Raw
// attributes not listed here stay behind.
var MastFieldTranslations = []FieldTranslation{
	{"ID", "id"},
	{"OID", "objectid"},
	{"DRIFTSMERKING", "driftsmerking"},
	{"LINJENUMMER", "linje_nummer"},
	{"MASTENUMMER", "mast_nummer"},
	{"KOMPONENTNUMMER", "komponentnummer"},
	{"KOMMUNE", "kommune"},
	{"SPENNING", "spenning"},
	{"HOEYESTE_SP_NIV", "hoeyeste_sp_niv"},
	{"BYGGEAAR", "byggeaar"},
	{"MASTETYPE", "mastetype"},
	{"MATERIAL", "material"},
	{"IMPREGNERING", "impregnering"},
	{"TRAVERS_TYPE", "travers_type"},
	{"ANTALL_STOLPER", "antall_stolper"},
	{"JORDTYPE", "jordtype"},
	{"EIER", "eier"},
	{"SONE", "sone"},
	{"MSTASJON", "mstasjon"},
	{"MRADIAL", "mradial"},
	{"FELLESFOERINGER", "fellesfoeringer"},
	{"OMRAADENAVN", "omraadenavn"},
	{"ANMERKNING", "anmerkning"},
	{"MERKNAD_INSPEKSJON", "merknad_inspeksjon"},
	{"SIGN_INSPEKSJON", "sign_inspeksjon"},
	{"VEILYS", "veilys"},
	{"SYNLIG_LENGDE", "synlig_lengde"},
}
