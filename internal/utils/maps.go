package utils

// UFs maps the Brazilian state codes to their names
var UFs = map[string]string{
	"AC": "Acre",
	"AL": "Alagoas",
	"AP": "Amapá",
	"AM": "Amazonas",
	"BA": "Bahia",
	"CE": "Ceará",
	"DF": "Distrito Federal",
	"ES": "Espírito Santo",
	"GO": "Goiás",
	"MA": "Maranhão",
	"MT": "Mato Grosso",
	"MS": "Mato Grosso do Sul",
	"MG": "Minas Gerais",
	"PA": "Pará",
	"PB": "Paraíba",
	"PR": "Paraná",
	"PE": "Pernambuco",
	"PI": "Piauí",
	"RJ": "Rio de Janeiro",
	"RN": "Rio Grande do Norte",
	"RS": "Rio Grande do Sul",
	"RO": "Rondônia",
	"RR": "Roraima",
	"SC": "Santa Catarina",
	"SP": "São Paulo",
	"SE": "Sergipe",
	"TO": "Tocantins",
}

// MesesAbrev maps month numbers to the labels used by the dashboard charts
var MesesAbrev = map[int]string{
	1:  "jan",
	2:  "fev",
	3:  "mar",
	4:  "abr",
	5:  "mai",
	6:  "jun",
	7:  "jul",
	8:  "ago",
	9:  "set",
	10: "out",
	11: "nov",
	12: "dez",
}

// ArquivoEntities maps the entities that accept attachments to their tables
var ArquivoEntities = map[string]string{
	"socios":         "socios",
	"empresas":       "empresas",
	"funcionarios":   "funcionarios",
	"ativos":         "ativos",
	"contas-pagar":   "contas_pagar",
	"contas-receber": "contas_receber",
}

// ArquivoContentTypes lists the accepted attachment types
var ArquivoContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"application/pdf": ".pdf",
}
