package kernel

// Typed identifiers shared across domains. Keeping them distinct at the type
// level prevents a guest session id from being passed where a user id is
// expected, even though both are opaque strings on the wire.

// UserID identifica a un usuario registrado
type UserID string

func NewUserID(s string) UserID  { return UserID(s) }
func (id UserID) String() string { return string(id) }
func (id UserID) IsEmpty() bool  { return id == "" }

// SessionID identifica una sesión de invitado
type SessionID string

func NewSessionID(s string) SessionID { return SessionID(s) }
func (id SessionID) String() string   { return string(id) }
func (id SessionID) IsEmpty() bool    { return id == "" }

// OwnerID es el dueño de una fila: un usuario registrado o una sesión de
// invitado. Ambos comparten el mismo espacio de claves en las tablas.
type OwnerID string

func NewOwnerID(s string) OwnerID          { return OwnerID(s) }
func (id OwnerID) String() string          { return string(id) }
func (id OwnerID) IsEmpty() bool           { return id == "" }
func OwnerFromUser(u UserID) OwnerID       { return OwnerID(u) }
func OwnerFromSession(s SessionID) OwnerID { return OwnerID(s) }

// ConversationID identifica una conversación
type ConversationID string

func NewConversationID(s string) ConversationID { return ConversationID(s) }
func (id ConversationID) String() string        { return string(id) }

// MessageID identifica un mensaje
type MessageID string

func NewMessageID(s string) MessageID { return MessageID(s) }
func (id MessageID) String() string   { return string(id) }

// DraftID identifica un borrador
type DraftID string

func NewDraftID(s string) DraftID { return DraftID(s) }
func (id DraftID) String() string { return string(id) }

// DeviceID es la huella heurística de un dispositivo
type DeviceID string

func NewDeviceID(s string) DeviceID { return DeviceID(s) }
func (id DeviceID) String() string  { return string(id) }
