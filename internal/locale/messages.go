package locale

// Message keys.
const (
	MsgNoSalesData     = "export.no_sales"
	MsgNoInventoryData = "export.no_inventory"
	MsgUnauthorized    = "page.unauthorized"
	MsgUnauthorizedTip = "page.unauthorized_tip"
	MsgSignIn          = "page.sign_in"
	MsgRegister        = "page.register"
)

var catalog = map[Locale]map[string]string{
	English: {
		MsgNoSalesData:     "No sales data to export",
		MsgNoInventoryData: "No inventory data to export",
		MsgUnauthorized:    "Unauthorized",
		MsgUnauthorizedTip: "You do not have permission to view this page.",
		MsgSignIn:          "Sign in",
		MsgRegister:        "Create an account",
	},
	French: {
		MsgNoSalesData:     "Aucune donnée de vente à exporter",
		MsgNoInventoryData: "Aucune donnée d'inventaire à exporter",
		MsgUnauthorized:    "Accès refusé",
		MsgUnauthorizedTip: "Vous n'avez pas l'autorisation d'afficher cette page.",
		MsgSignIn:          "Connexion",
		MsgRegister:        "Créer un compte",
	},
}

// Message returns the text for key in l, falling back to English and then
// to the key itself.
func Message(l Locale, key string) string {
	if msg, ok := catalog[l][key]; ok {
		return msg
	}
	if msg, ok := catalog[Default][key]; ok {
		return msg
	}
	return key
}
