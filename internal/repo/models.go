package repo

// Role identifica o papel fixo de uma conta.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// IDType indica o esquema do identificador de login.
type IDType string

const (
	IDTypeMatricula IDType = "matricula"
	IDTypeCPF       IDType = "cpf"
)

// Valid informa se o tipo de identificador é conhecido.
func (t IDType) Valid() bool {
	return t == IDTypeMatricula || t == IDTypeCPF
}

// User representa uma conta do portal (colaborador ou administrador).
type User struct {
	ID            string         `json:"id"`
	Username      string         `json:"username"`
	IDType        IDType         `json:"idType"`
	Password      string         `json:"password,omitempty"`
	Role          Role           `json:"role"`
	IsFirstAccess bool           `json:"isFirstAccess"`
	PersonalData  *PersonalData  `json:"personalData,omitempty"`
	Permissions   *CapabilitySet `json:"permissions,omitempty"`
	SuperAdmin    bool           `json:"isSuperAdmin,omitempty"`
	Hidden        bool           `json:"hidden,omitempty"`
}

// IsAdmin informa se a conta possui papel administrativo.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Public devolve uma cópia sem a senha, para respostas da API.
func (u User) Public() User {
	u.Password = ""
	return u
}

// BankData agrupa dados bancários e chave PIX.
type BankData struct {
	PixType    string `json:"pixType"`
	PixKey     string `json:"pixKey"`
	HolderName string `json:"holderName"`
	BankName   string `json:"bankName"`
	Agency     string `json:"agency"`
	Account    string `json:"account"`
}

// PersonalData é o cadastro preenchido pelo colaborador no primeiro acesso.
type PersonalData struct {
	FullName     string   `json:"fullName"`
	RG           string   `json:"rg"`
	BirthDate    string   `json:"birthDate"`
	Phone        string   `json:"phone"`
	VoterTitle   string   `json:"voterTitle"`
	ReservistID  string   `json:"reservistId,omitempty"`
	PisPasep     string   `json:"pisPasep"`
	CEP          string   `json:"cep"`
	State        string   `json:"state"`
	City         string   `json:"city"`
	Neighborhood string   `json:"neighborhood"`
	Address      string   `json:"address"`
	HouseNumber  string   `json:"houseNumber"`
	Complement   string   `json:"complement,omitempty"`
	SecondaryID  string   `json:"secondaryId,omitempty"`
	BankData     BankData `json:"bankData"`
}

// ContentType distingue arquivos de links externos.
type ContentType string

const (
	ContentFile ContentType = "file"
	ContentLink ContentType = "link"
)

// FileType é a classificação reduzida usada para ícones e download.
type FileType string

const (
	FilePDF   FileType = "pdf"
	FileJPG   FileType = "jpg"
	FilePNG   FileType = "png"
	FileDOC   FileType = "doc"
	FilePPT   FileType = "ppt"
	FileOther FileType = "other"
)

// LinkFileName é o rótulo fixo gravado em conteúdos do tipo link.
const LinkFileName = "Link Externo"

// Content representa um arquivo ou link publicado no portal.
type Content struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
	ContentType ContentType `json:"contentType"`
	Audience    Audience    `json:"targetUserIds"`
	LinkURL     string      `json:"linkUrl,omitempty"`
	FileType    FileType    `json:"fileType,omitempty"`
	FileData    string      `json:"fileData,omitempty"`
	FileName    string      `json:"fileName,omitempty"`
}

// Summary devolve uma cópia sem o corpo do arquivo, usada em listagens.
func (c Content) Summary() Content {
	c.FileData = ""
	return c
}
