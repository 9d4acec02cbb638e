package catalog

import "github.com/indrapalijama/alkitab-api-v3/internal/domain"

// canonicalBooks lists the 66 books in canonical order. Prefix and substring
// matching walk this slice, so its order decides ties.
var canonicalBooks = []domain.BookIdentity{
	// Old Testament
	{Name: "Kejadian", EnglishName: "Genesis", ShortCode: "Kej"},
	{Name: "Keluaran", EnglishName: "Exodus", ShortCode: "Kel"},
	{Name: "Imamat", EnglishName: "Leviticus", ShortCode: "Im"},
	{Name: "Bilangan", EnglishName: "Numbers", ShortCode: "Bil"},
	{Name: "Ulangan", EnglishName: "Deuteronomy", ShortCode: "Ula"},
	{Name: "Yosua", EnglishName: "Joshua", ShortCode: "Yos"},
	{Name: "Hakim-hakim", EnglishName: "Judges", ShortCode: "Hak"},
	{Name: "Rut", EnglishName: "Ruth", ShortCode: "Rut"},
	{Name: "1 Samuel", EnglishName: "1 Samuel", ShortCode: "1Sa"},
	{Name: "2 Samuel", EnglishName: "2 Samuel", ShortCode: "2Sa"},
	{Name: "1 Raja-raja", EnglishName: "1 Kings", ShortCode: "1Ra"},
	{Name: "2 Raja-raja", EnglishName: "2 Kings", ShortCode: "2Ra"},
	{Name: "1 Tawarikh", EnglishName: "1 Chronicles", ShortCode: "1Ta"},
	{Name: "2 Tawarikh", EnglishName: "2 Chronicles", ShortCode: "2Ta"},
	{Name: "Ezra", EnglishName: "Ezra", ShortCode: "Eza", Aliases: []string{"ezr"}},
	{Name: "Nehemia", EnglishName: "Nehemiah", ShortCode: "Neh"},
	{Name: "Ester", EnglishName: "Esther", ShortCode: "Est"},
	{Name: "Ayub", EnglishName: "Job", ShortCode: "Ayu", Aliases: []string{"ayb"}},
	{Name: "Mazmur", EnglishName: "Psalms", ShortCode: "Maz", Aliases: []string{"mzm"}},
	{Name: "Amsal", EnglishName: "Proverbs", ShortCode: "Ams"},
	{Name: "Pengkhotbah", EnglishName: "Ecclesiastes", ShortCode: "Pkh"},
	{Name: "Kidung Agung", EnglishName: "Song of Solomon", ShortCode: "Kid"},
	{Name: "Yesaya", EnglishName: "Isaiah", ShortCode: "Yes"},
	{Name: "Yeremia", EnglishName: "Jeremiah", ShortCode: "Yer"},
	{Name: "Ratapan", EnglishName: "Lamentations", ShortCode: "Rat"},
	{Name: "Yehezkiel", EnglishName: "Ezekiel", ShortCode: "Yeh"},
	{Name: "Daniel", EnglishName: "Daniel", ShortCode: "Dan"},
	{Name: "Hosea", EnglishName: "Hosea", ShortCode: "Hos"},
	{Name: "Yoel", EnglishName: "Joel", ShortCode: "Yoe"},
	{Name: "Amos", EnglishName: "Amos", ShortCode: "Amo"},
	{Name: "Obaja", EnglishName: "Obadiah", ShortCode: "Oba"},
	{Name: "Yunus", EnglishName: "Jonah", ShortCode: "Yun"},
	{Name: "Mikha", EnglishName: "Micah", ShortCode: "Mik"},
	{Name: "Nahum", EnglishName: "Nahum", ShortCode: "Nah"},
	{Name: "Habakuk", EnglishName: "Habakkuk", ShortCode: "Hab"},
	{Name: "Zefanya", EnglishName: "Zephaniah", ShortCode: "Zef"},
	{Name: "Hagai", EnglishName: "Haggai", ShortCode: "Hag"},
	{Name: "Zakharia", EnglishName: "Zechariah", ShortCode: "Zak"},
	{Name: "Maleakhi", EnglishName: "Malachi", ShortCode: "Mal"},
	// New Testament
	{Name: "Matius", EnglishName: "Matthew", ShortCode: "Mat"},
	{Name: "Markus", EnglishName: "Mark", ShortCode: "Mar"},
	{Name: "Lukas", EnglishName: "Luke", ShortCode: "Luk"},
	{Name: "Yohanes", EnglishName: "John", ShortCode: "Yoh"},
	{Name: "Kisah Para Rasul", EnglishName: "Acts", ShortCode: "Kis"},
	{Name: "Roma", EnglishName: "Romans", ShortCode: "Rom"},
	{Name: "1 Korintus", EnglishName: "1 Corinthians", ShortCode: "1Ko"},
	{Name: "2 Korintus", EnglishName: "2 Corinthians", ShortCode: "2Ko"},
	{Name: "Galatia", EnglishName: "Galatians", ShortCode: "Gal"},
	{Name: "Efesus", EnglishName: "Ephesians", ShortCode: "Efe"},
	{Name: "Filipi", EnglishName: "Philippians", ShortCode: "Fip"},
	{Name: "Kolose", EnglishName: "Colossians", ShortCode: "Kol"},
	{Name: "1 Tesalonika", EnglishName: "1 Thessalonians", ShortCode: "1Te"},
	{Name: "2 Tesalonika", EnglishName: "2 Thessalonians", ShortCode: "2Te"},
	{Name: "1 Timotius", EnglishName: "1 Timothy", ShortCode: "1Ti"},
	{Name: "2 Timotius", EnglishName: "2 Timothy", ShortCode: "2Ti"},
	{Name: "Titus", EnglishName: "Titus", ShortCode: "Tit"},
	{Name: "Filemon", EnglishName: "Philemon", ShortCode: "Fim"},
	{Name: "Ibrani", EnglishName: "Hebrews", ShortCode: "Ibr"},
	{Name: "Yakobus", EnglishName: "James", ShortCode: "Yak"},
	{Name: "1 Petrus", EnglishName: "1 Peter", ShortCode: "1Pe"},
	{Name: "2 Petrus", EnglishName: "2 Peter", ShortCode: "2Pe"},
	{Name: "1 Yohanes", EnglishName: "1 John", ShortCode: "1Yo"},
	{Name: "2 Yohanes", EnglishName: "2 John", ShortCode: "2Yo"},
	{Name: "3 Yohanes", EnglishName: "3 John", ShortCode: "3Yo"},
	{Name: "Yudas", EnglishName: "Jude", ShortCode: "Yud"},
	{Name: "Wahyu", EnglishName: "Revelation", ShortCode: "Wah", Aliases: []string{"why"}},
}
